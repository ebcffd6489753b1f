package pipeline

import (
	"github.com/atomicleads/videoworker/pkg/logging"
	"go.uber.org/zap"
)

var logger = logging.Create("pipeline", logging.Dev)

func SetLogger(l *zap.SugaredLogger) {
	logger = l
}
