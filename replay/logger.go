package replay

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "replay")
