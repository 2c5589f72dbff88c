package bmeta

import "github.com/sirupsen/logrus"

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Print пишет в лог версию, дату и комит сборки.
func Print(logger logrus.FieldLogger, version, date, commit string) {
	logger.WithFields(logrus.Fields{
		"version": orDefault(version),
		"date":    orDefault(date),
		"commit":  orDefault(commit),
	}).Info("Build info")
}

func orDefault(v string) string {
	if v == "" {
		return defaultBuildMeta
	}
	return v
}
