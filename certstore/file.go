// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package certstore

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/pkcs12"
)

const storeDirName = "cap-clientauth"

// FileStore is a Store backed by one directory per Location. Each directory
// holds PEM bundles (.pem, .crt, .cer), optionally paired with a sibling .key
// file, and PKCS#12 archives (.pfx, .p12). Every Lookup rescans the directory
// and nothing is retained once the returned Handle is closed.
type FileStore struct {
	dirs     map[Location]string
	password string
	logger   hclog.Logger
}

// ensure that FileStore implements the Store interface
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore.
//
// Supported options:
//   - WithDirectory
//   - WithPKCS12Password
//   - WithLogger
func NewFileStore(opt ...Option) (*FileStore, error) {
	const op = "certstore.NewFileStore"
	opts := getFileStoreOpts(opt...)
	dirs := make(map[Location]string, len(opts.withDirectories))
	for loc, dir := range opts.withDirectories {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid directory %q for %s: %w", op, dir, loc, ErrInvalidParameter)
		}
		dirs[loc] = abs
	}
	return &FileStore{
		dirs:     dirs,
		password: opts.withPassword,
		logger:   opts.withLogger,
	}, nil
}

// Directory returns the directory searched for loc.
func (s *FileStore) Directory(loc Location) string { return s.dirs[loc] }

// Lookup implements Store.
func (s *FileStore) Lookup(ctx context.Context, loc Location, thumbprint string) (*Handle, error) {
	const op = "FileStore.Lookup"
	dir, ok := s.dirs[loc]
	if !ok {
		return nil, fmt.Errorf("%s: no directory configured for %s: %w", op, loc, ErrCertificateNotFound)
	}
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%s: %s does not exist: %w", op, dir, ErrCertificateNotFound)
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}

	var skipped *multierror.Error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var blocks []*pem.Block
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pem", ".crt", ".cer":
			blocks, err = readPEMFile(path)
		case ".pfx", ".p12":
			blocks, err = s.readPKCS12File(path)
		default:
			continue
		}
		if err != nil {
			skipped = multierror.Append(skipped, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		cert, priv, err := matchBlocks(blocks, thumbprint)
		if cert == nil {
			if err != nil {
				skipped = multierror.Append(skipped, fmt.Errorf("%s: %w", e.Name(), err))
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, e.Name(), err)
		}
		if priv == nil {
			priv, err = readSiblingKey(path)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		s.logger.Debug("certificate located", "thumbprint", thumbprint, "location", loc.String(), "file", e.Name())
		return NewHandle(loc, cert, priv, nil), nil
	}
	if err := skipped.ErrorOrNil(); err != nil {
		s.logger.Debug("unreadable store entries skipped", "location", loc.String(), "error", err)
	}
	return nil, fmt.Errorf("%s: %s in %s: %w", op, thumbprint, loc, ErrCertificateNotFound)
}

func (s *FileStore) readPKCS12File(path string) ([]*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blocks, err := pkcs12.ToPEM(data, s.password)
	if err != nil {
		return nil, fmt.Errorf("unable to decode PKCS#12 archive: %w", err)
	}
	return blocks, nil
}

func readPEMFile(path string) ([]*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodePEM(data)
}

func decodePEM(data []byte) ([]*pem.Block, error) {
	var blocks []*pem.Block
	for {
		var b *pem.Block
		b, data = pem.Decode(data)
		if b == nil {
			break
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return nil, errors.New("no PEM blocks")
	}
	return blocks, nil
}

// readSiblingKey reads "name.key" next to "name.crt". A missing file is not
// an error; the certificate simply has no private key. A key file that exists
// but holds no usable key is an error.
func readSiblingKey(certPath string) (crypto.PrivateKey, error) {
	keyPath := strings.TrimSuffix(certPath, filepath.Ext(certPath)) + ".key"
	name := filepath.Base(keyPath)
	data, err := os.ReadFile(keyPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w: %w", name, ErrStoreUnavailable, err)
	}
	blocks, err := decodePEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, keys.ErrInvalidKey, err)
	}
	var result *multierror.Error
	for _, b := range blocks {
		priv, err := parsePrivateKeyBlock(b)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if priv != nil {
			return priv, nil
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, keys.ErrInvalidKey, err)
	}
	return nil, fmt.Errorf("%s: no private key block: %w", name, keys.ErrInvalidKey)
}

// matchBlocks returns the certificate matching thumbprint and the first
// private key among blocks. A nil certificate means no match; the error then
// lists the certificate blocks that could not be parsed. With a match, an
// error means the bundle's private key blocks were all unusable.
func matchBlocks(blocks []*pem.Block, thumbprint string) (*x509.Certificate, crypto.PrivateKey, error) {
	var match *x509.Certificate
	var priv crypto.PrivateKey
	var badCerts, badKeys *multierror.Error
	for i, b := range blocks {
		if b.Type == "CERTIFICATE" {
			if match != nil {
				continue
			}
			cert, err := x509.ParseCertificate(b.Bytes)
			if err != nil {
				badCerts = multierror.Append(badCerts, fmt.Errorf("block %d: unable to parse certificate: %w", i, err))
				continue
			}
			if keys.Thumbprint(cert) == thumbprint {
				match = cert
			}
			continue
		}
		if priv != nil {
			continue
		}
		k, err := parsePrivateKeyBlock(b)
		if err != nil {
			badKeys = multierror.Append(badKeys, fmt.Errorf("block %d: %w", i, err))
			continue
		}
		priv = k
	}
	switch {
	case match == nil:
		return nil, nil, badCerts.ErrorOrNil()
	case priv == nil && badKeys != nil:
		return match, nil, fmt.Errorf("%w: %w", keys.ErrInvalidKey, badKeys.ErrorOrNil())
	}
	return match, priv, nil
}

// parsePrivateKeyBlock accepts PKCS#8, PKCS#1 and SEC 1 encodings regardless
// of the block type, since PKCS#12 conversion labels PKCS#1 keys as
// "PRIVATE KEY". Blocks that are not private keys yield nil and no error.
func parsePrivateKeyBlock(b *pem.Block) (crypto.PrivateKey, error) {
	switch {
	case !strings.HasSuffix(b.Type, "PRIVATE KEY"):
		return nil, nil
	case strings.HasPrefix(b.Type, "ENCRYPTED"):
		return nil, fmt.Errorf("%s blocks are not supported: %w", b.Type, keys.ErrInvalidKey)
	}
	if k, err := x509.ParsePKCS8PrivateKey(b.Bytes); err == nil {
		return k, nil
	}
	if k, err := x509.ParsePKCS1PrivateKey(b.Bytes); err == nil {
		return k, nil
	}
	if k, err := x509.ParseECPrivateKey(b.Bytes); err == nil {
		return k, nil
	}
	return nil, fmt.Errorf("unable to parse %s block: %w", b.Type, keys.ErrInvalidKey)
}

func defaultDirectory(loc Location) string {
	switch loc {
	case CurrentUser:
		base, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		return filepath.Join(base, storeDirName, "certs")
	case LocalMachine:
		if runtime.GOOS == "windows" {
			if pd := os.Getenv("ProgramData"); pd != "" {
				return filepath.Join(pd, storeDirName, "certs")
			}
			return ""
		}
		return filepath.Join("/etc", storeDirName, "certs")
	default:
		return ""
	}
}
