package state

import (
	cosmoslog "cosmossdk.io/log"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// treeLogger lets the iavl tree, which speaks the cosmos log interface,
// share the node's comet logger.
type treeLogger struct {
	lg cmtlog.Logger
}

func Cometbft2CosmosLogger(lg cmtlog.Logger) cosmoslog.Logger {
	return treeLogger{lg: lg}
}

func (l treeLogger) Info(msg string, keyVals ...any) {
	l.lg.Info(msg, keyVals...)
}

// comet loggers have no warn level; warnings land on info.
func (l treeLogger) Warn(msg string, keyVals ...any) {
	l.lg.Info(msg, keyVals...)
}

func (l treeLogger) Error(msg string, keyVals ...any) {
	l.lg.Error(msg, keyVals...)
}

func (l treeLogger) Debug(msg string, keyVals ...any) {
	l.lg.Debug(msg, keyVals...)
}

func (l treeLogger) With(keyVals ...any) cosmoslog.Logger {
	return treeLogger{lg: l.lg.With(keyVals...)}
}

func (l treeLogger) Impl() any {
	return l.lg
}
