package approach

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "approach")
