package formatter

import "errors"

// ErrUnsupportedFormat is returned by Encode for formats other than json and yaml.
var ErrUnsupportedFormat = errors.New("unsupported output format")
