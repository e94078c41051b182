package ctl

import "sessionstate/internal/providers"

// discardLogger satisfies providers.Logger for one-shot commands, which
// report through their own output instead.
type discardLogger struct{}

func (discardLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (discardLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (discardLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (discardLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (discardLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (discardLogger) Close()                                                  {}
