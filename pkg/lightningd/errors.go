package lightningd

import "errors"

var (
	// ErrSockPathNotExist: the control socket never showed up inside the wait
	// budget. The daemon process most likely failed to initialize at all;
	// check its stdout with Conf.ViewStdout.
	ErrSockPathNotExist = errors.New("lightning-rpc socket did not appear within the wait budget")

	// ErrGetInfoSyncing: the daemon came up but kept reporting sync warnings
	// for the whole wait budget. Usually the backend is still ingesting
	// blocks, or was started too far behind.
	ErrGetInfoSyncing = errors.New("lightningd still syncing after the wait budget")
)
