package vars

import (
	"github.com/sirupsen/logrus"
)

type loggingHandler struct {
	Handler
	logger *logrus.Entry
}

// WithLogging wraps h so that every read is logged at debug level and every
// write, successful or not, at info level.
func WithLogging(h Handler, logger *logrus.Entry) Handler {
	return &loggingHandler{
		Handler: h,
		logger:  logger.WithField("var", h.Name()),
	}
}

func (l *loggingHandler) Get() (Value, error) {
	v, err := l.Handler.Get()
	if err != nil {
		l.logger.WithError(err).Debug("VGET failed")
		return v, err
	}
	l.logger.WithField("value", v.Format()).Debug("VGET")
	return v, nil
}

func (l *loggingHandler) Set(v Value) error {
	fields := logrus.Fields{"value": v.Format()}
	if old, err := l.Handler.Get(); err == nil {
		fields["old"] = old.Format()
	}
	if err := l.Handler.Set(v); err != nil {
		l.logger.WithFields(fields).WithError(err).Info("VSET refused")
		return err
	}
	l.logger.WithFields(fields).Info("VSET")
	return nil
}
