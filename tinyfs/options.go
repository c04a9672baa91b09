package tinyfs

import "github.com/sirupsen/logrus"

// Option configures a FileSystem at construction time.
type Option func(*FileSystem)

// WithLogger attaches a logrus logger used for debug-level tracing of
// mount, unmount and file-open events; block allocations and frees are
// not logged. The default is
// logrus.StandardLogger(), so callers are never required to supply one.
func WithLogger(log *logrus.Logger) Option {
	return func(fs *FileSystem) {
		fs.log = logrus.NewEntry(log)
	}
}
