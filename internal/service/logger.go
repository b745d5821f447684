package service

import "github.com/m-mizutani/lakefront/internal"

var logger = internal.Logger
