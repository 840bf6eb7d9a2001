package loader

import (
	"github.com/sirupsen/logrus"

	"github.com/schedlottery/schedlottery/internal/pinfs"
)

// Detach fully stops and discards the tracer by removing the attachment,
// program, and map pins in that order. Dropping the link pin releases the
// last reference to the attachment, which detaches the handler; the map and
// its statistics disappear with the map pin. Each removal ignores "does not
// exist", so detaching a never-loaded or half-loaded tracer succeeds.
func Detach(log logrus.FieldLogger, cfg *Config) error {
	log = log.WithField("component", "loader")

	pins := []struct {
		object string
		path   string
	}{
		{"link", cfg.LinkPin},
		{"program", cfg.ProgPin},
		{"map", cfg.MapPin},
	}

	for _, p := range pins {
		if err := pinfs.RemoveStale(p.path); err != nil {
			return &PinError{Object: p.object, Path: p.path, Err: err}
		}

		log.WithFields(logrus.Fields{
			"object": p.object,
			"path":   p.path,
		}).Debug("Removed pin")
	}

	log.Info("Tracer detached")

	return nil
}
