package sys

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Exists returns true if the path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dir (and any missing parents) if it does not already
// exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// ValidateDir checks that dir is an existing directory that is both
// readable and writable. Writability is checked with a probe file rather
// than permission bits, so mount options and ACLs are honored.
func ValidateDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "stat %s", dir)
	}
	if !info.IsDir() {
		return errors.Newf("%s is not a directory", dir)
	}
	if _, err := os.ReadDir(dir); err != nil {
		return errors.Wrapf(err, "%s is not readable", dir)
	}
	probe, err := os.CreateTemp(dir, ".probe.*")
	if err != nil {
		return errors.Wrapf(err, "%s is not writable", dir)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
