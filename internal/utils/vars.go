package utils

import "errors"

const DefaultBufferSize = 1024 * 64 // 64KB read buffer
const DownloadsDirName = "Downloads"
const OutputExtension = ".pdf"
const ToolUserAgent = "pdfpull/1.0"

const UnknownSize int64 = -1

var (
	ErrUsage             = errors.New("no URL provided")
	ErrProbe             = errors.New("size probe failed")
	ErrTransfer          = errors.New("transfer failed")
	ErrWrite             = errors.New("write failed")
	ErrInvalidTransition = errors.New("invalid transfer state transition")
)
