// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/cap-clientauth/keys"
	"github.com/hashicorp/go-uuid"
)

const (
	// JWTTypeParam is the proper value for client_assertion_type.
	// https://www.rfc-editor.org/rfc/rfc7523.html#section-2.2
	JWTTypeParam = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

	// TokenType is the "typ" header of every client assertion.
	TokenType = "client-authentication+jwt"

	// DefaultExpiry is the lifetime of an assertion unless WithExpiry is used.
	DefaultExpiry = 10 * time.Second
)

// Assertion is a signed client assertion, ready to be sent as the
// client_assertion_type and client_assertion parameters of a token request.
type Assertion struct {
	// Type is always JWTTypeParam.
	Type string
	// Value is the compact serialized JWT.
	Value string
	// ExpiresAt is the "exp" claim of Value.
	ExpiresAt time.Time
}

// Expired reports whether the assertion is no longer valid at now.
func (a *Assertion) Expired(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// Create is a convenience for NewJWT followed by Assertion. Note the argument
// order: issuer is the authorization server's issuer and becomes the "aud"
// claim.
func Create(issuer, clientID string, key *keys.PrivateKey, opt ...Option) (*Assertion, error) {
	const op = "clientassertion.Create"
	j, err := NewJWT(clientID, issuer, key, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a, err := j.Assertion()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// NewJWT creates a new JWT which will be signed with key. The "alg" header is
// the key's algorithm, or RS256 when the key has none, and the "kid" header
// is the key's id unless WithKeyID is used.
//
// Supported Options:
//   - WithExpiry
//   - WithKeyID
//   - WithAlgorithm
//   - WithHeaders
func NewJWT(clientID, issuer string, key *keys.PrivateKey, opts ...Option) (*JWT, error) {
	const op = "NewJWT"
	j := &JWT{
		clientID: clientID,
		issuer:   issuer,
		key:      key,
		expiry:   DefaultExpiry,
		headers:  make(map[string]string),
		genID:    uuid.GenerateUUID,
		now:      time.Now,
	}
	if key != nil {
		j.alg = key.Algorithm()
		if kid := key.KeyID(); kid != "" {
			j.headers["kid"] = kid
		}
	}
	if j.alg == "" {
		j.alg = keys.DefaultAlgorithm
	}

	var errs []error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(j); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	if err := j.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// finally, make sure Serialize() works; we can't pre-validate everything,
	// and this whole thing is useless if it can't Serialize()
	if _, err := j.Serialize(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return j, nil
}

// JWT is used to create a client assertion JWT, a special JWT used by an OAuth
// 2.0 client to authenticate itself to an authorization server. A JWT is
// immutable and safe for concurrent use.
type JWT struct {
	// for JWT claims
	clientID string
	issuer   string
	expiry   time.Duration
	headers  map[string]string

	// for signer
	alg keys.Alg
	key *keys.PrivateKey

	// these are overwritten for testing
	genID func() (string, error)
	now   func() time.Time
}

// Serialize returns a new client assertion JWT, with a fresh "jti" and
// "iat", on every call.
func (j *JWT) Serialize() (string, error) {
	const op = "JWT.Serialize"
	token, _, err := j.sign()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Assertion signs a new JWT and returns it along with its expiry.
func (j *JWT) Assertion() (*Assertion, error) {
	const op = "JWT.Assertion"
	token, exp, err := j.sign()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Assertion{
		Type:      JWTTypeParam,
		Value:     token,
		ExpiresAt: exp,
	}, nil
}

func (j *JWT) validate() error {
	const op = "JWT.validate"
	var errs []error
	if j.genID == nil {
		errs = append(errs, ErrMissingFuncIDGenerator)
	}
	if j.now == nil {
		errs = append(errs, ErrMissingFuncNow)
	}
	// bail early if any internal func errors
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	if j.clientID == "" {
		errs = append(errs, ErrMissingClientID)
	}
	if j.issuer == "" {
		errs = append(errs, ErrMissingIssuer)
	}
	if j.key == nil {
		errs = append(errs, ErrNilPrivateKey)
	}
	if j.expiry < 0 {
		errs = append(errs, ErrInvalidExpiration)
	}
	if err := j.alg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return nil
}

func (j *JWT) sign() (string, time.Time, error) {
	const op = "sign"
	if err := j.validate(); err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	signer, err := j.signer()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	id, err := j.genID()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: failed to generate token id: %w", op, err)
	}
	claims := j.claims(id)
	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: failed to serialize token: %w", op, err)
	}
	return token, claims.Expiry.Time(), nil
}

func (j *JWT) signer() (jose.Signer, error) {
	const op = "signer"
	sKey := jose.SigningKey{
		Algorithm: jose.SignatureAlgorithm(j.alg),
		Key:       j.key.RSA(),
	}

	sOpts := &jose.SignerOptions{
		ExtraHeaders: make(map[jose.HeaderKey]interface{}, len(j.headers)),
	}
	for k, v := range j.headers {
		if k == "kid" && v == "" {
			continue
		}
		sOpts.ExtraHeaders[jose.HeaderKey(k)] = v
	}

	signer, err := jose.NewSigner(sKey, sOpts.WithType(TokenType))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCreatingSigner, err)
	}
	return signer, nil
}

func (j *JWT) claims(id string) *jwt.Claims {
	now := j.now().UTC().Truncate(time.Second)
	return &jwt.Claims{
		Issuer:    j.clientID,
		Subject:   j.clientID,
		Audience:  jwt.Audience{j.issuer},
		Expiry:    jwt.NewNumericDate(now.Add(j.expiry)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        id,
	}
}
