package process_service

import "errors"

// ErrSpawnFailed marks a process that could not be launched at all
// (executable missing or not runnable). No ProcessResult exists for it.
var ErrSpawnFailed = errors.New("failed to spawn process")
