// Package materialize creates the directories and configuration files the
// managed services run from.
//
// Both operations are idempotent: re-running against artifacts that already
// exist in the expected state is a no-op success. WriteFile overwrites
// unconditionally, so generated content always reflects the current
// configuration set and is never merged with prior content. It verifies its
// own output afterwards so a corrupt template fails at write time instead
// of hours later inside a container.
package materialize

import (
	"bytes"
	"fmt"
	"os"
	"os/user"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnsureDir creates path (and parents) with the given mode and applies
// ownership. An existing directory is chmod'ed to the expected mode rather
// than treated as an error.
func EnsureDir(path string, mode os.FileMode, owner string) error {
	if err := os.MkdirAll(path, mode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	// MkdirAll applies the umask and skips pre-existing directories, so
	// enforce the mode explicitly.
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := applyOwner(path, owner); err != nil {
		return err
	}
	return nil
}

// WriteFile writes content to path, overwriting anything already there, then
// verifies the result: the file must exist, be non-empty, and contain every
// mustContain token. Missing tokens mean the template that produced the
// content is broken, and the error surfaces here.
func WriteFile(path string, content []byte, mode os.FileMode, owner string, mustContain ...string) error {
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// os.WriteFile only applies mode on create; enforce it on overwrite too.
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := applyOwner(path, owner); err != nil {
		return err
	}
	return verify(path, mustContain)
}

// WriteYAML is WriteFile for YAML artifacts: the content must additionally
// parse as YAML before anything touches disk.
func WriteYAML(path string, content []byte, mode os.FileMode, owner string, mustContain ...string) error {
	var parsed any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return fmt.Errorf("generated content for %s is not valid YAML: %w", path, err)
	}
	return WriteFile(path, content, mode, owner, mustContain...)
}

func verify(path string, mustContain []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("post-write verification of %s failed: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("post-write verification of %s failed: file is empty", path)
	}

	if len(mustContain) == 0 {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("post-write verification of %s failed: %w", path, err)
	}
	for _, token := range mustContain {
		if !bytes.Contains(data, []byte(token)) {
			return fmt.Errorf("post-write verification of %s failed: missing expected token %q", path, token)
		}
	}
	return nil
}

// applyOwner chowns path to owner, which may be a username or a numeric UID
// (container images commonly run as fixed UIDs with no host account).
// Ownership is skipped when owner is empty or the process is not root.
func applyOwner(path, owner string) error {
	if owner == "" || os.Geteuid() != 0 {
		return nil
	}

	uid, gid, err := resolveOwner(owner)
	if err != nil {
		return fmt.Errorf("failed to resolve owner %q for %s: %w", owner, path, err)
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("failed to chown %s to %s: %w", path, owner, err)
	}
	return nil
}

func resolveOwner(owner string) (uid, gid int, err error) {
	if id, convErr := strconv.Atoi(owner); convErr == nil {
		return id, id, nil
	}

	u, err := user.Lookup(owner)
	if err != nil {
		return 0, 0, err
	}
	uid, err = strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, err
	}
	gid, err = strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, err
	}
	return uid, gid, nil
}
