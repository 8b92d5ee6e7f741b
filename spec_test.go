package mushroom

import (
	"github.com/xh3b4sd/mushroom/guide"
	"github.com/xh3b4sd/mushroom/loader"
	"github.com/xh3b4sd/mushroom/preprocessor"
	"github.com/xh3b4sd/mushroom/store/fs"
	"github.com/xh3b4sd/mushroom/store/memory"
	"github.com/xh3b4sd/mushroom/store/s3"
	"github.com/xh3b4sd/mushroom/store/sqldb"
)

var (
	_ Classifier   = (*loader.Loader)(nil)
	_ Guide        = (*guide.Guide)(nil)
	_ Preprocessor = (*preprocessor.Preprocessor)(nil)
	_ Store        = (*fs.Store)(nil)
	_ Store        = (*memory.Store)(nil)
	_ Store        = (*s3.Store)(nil)
	_ Store        = (*sqldb.Store)(nil)
)
