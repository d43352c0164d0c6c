package metrics

import "errors"

var ErrBufferFull = errors.New("metrics buffer full")
