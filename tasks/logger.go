package tasks

import (
	"github.com/atomicleads/videoworker/pkg/logging"
	"go.uber.org/zap"
)

var logger = logging.Create("tasks", logging.Dev)

func SetLogger(l *zap.SugaredLogger) {
	logger = l
}
