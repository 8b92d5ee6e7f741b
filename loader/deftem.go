package loader

const deftem = `
import json

import numpy as np

from catboost import CatBoostClassifier
from http.server import BaseHTTPRequestHandler, HTTPServer

################################################################################

def load_model(p):
  m = CatBoostClassifier()

  m.load_model(p)

  return m

################################################################################

model = load_model("{{ .Pat }}")

################################################################################

class S(BaseHTTPRequestHandler):
    def _set_response(self, code, typ):
        self.send_response(code)
        self.send_header('Content-type', typ)
        self.end_headers()

    def do_GET(self):
        self._set_response(200, 'text/html')
        self.wfile.write("OK\n".encode("utf-8"))

    def do_POST(self):
        con_len = int(self.headers.get('Content-Length'))
        req_bod = json.loads(self.rfile.read(con_len).decode('utf-8'))

        try:
            lab = model.predict(np.asarray(req_bod["rows"], dtype=float))
        except Exception as e:
            self._set_response(500, 'text/plain')
            self.wfile.write(str(e).encode("utf-8"))
            return

        self._set_response(200, 'application/json')
        self.wfile.write(json.dumps({"labels": [str(l) for l in np.asarray(lab).ravel()]}).encode("utf-8"))

    def log_message(self, format, *args):
        return

################################################################################

def run(server_class=HTTPServer, handler_class=S, addr="{{ .Add }}", port={{ .Por }}):
    httpd = server_class((addr, port), handler_class)
    print('Starting http server')

    try:
        httpd.serve_forever()
    except KeyboardInterrupt:
        pass

    httpd.server_close()
    print('Stopping http server')

################################################################################

run()
`
