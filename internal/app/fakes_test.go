package app

import (
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/core/coretest"
	"github.com/dkeye/Parley/internal/domain"
)

func newConn(uid domain.UserID) (*core.Connection, *coretest.Signal) {
	return coretest.NewConn(uid)
}
