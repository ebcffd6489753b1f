package worker

import (
	"github.com/atomicleads/videoworker/pkg/logging"
	"go.uber.org/zap"
)

var logger = logging.Create("worker", logging.Dev)

func SetLogger(l *zap.SugaredLogger) {
	logger = l
}
