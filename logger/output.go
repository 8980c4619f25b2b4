package logger

import "os"

func defaultOutput() *os.File { return os.Stderr }
