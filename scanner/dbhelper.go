package scanner

import (
	"dupfinder/logging"

	"github.com/sirupsen/logrus"
)

// alreadyIndexed is the persist-mode skip-check. Store errors fail open: the
// file is processed again.
func (s *Scanner) alreadyIndexed(filename string) bool {
	exists, err := s.store.Exists(filename)
	if err != nil {
		logging.WithFields(logrus.Fields{
			"file":  filename,
			"error": err,
		}).Warn("skip-check failed, processing file again")
		return false
	}
	return exists
}

// matchFingerprint returns the canonical filename stored for fingerprint.
// Store errors fail open and are treated as no match.
func (s *Scanner) matchFingerprint(fingerprint string) (string, bool) {
	original, found, err := s.store.LookupByFingerprint(fingerprint)
	if err != nil {
		logging.WithFields(logrus.Fields{
			"fingerprint": fingerprint,
			"error":       err,
		}).Warn("fingerprint lookup failed, treating as new image")
		return "", false
	}
	return original, found
}
