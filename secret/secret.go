// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package secret

import "encoding/json"

// Secret is a configured client secret in any of the formats Parse accepts.
// It is redacted when printed or marshaled.
type Secret string

// RedactedSecret is the redacted string or json for a Secret
const RedactedSecret = "[REDACTED: client secret]"

// String will redact the secret
func (s Secret) String() string {
	return RedactedSecret
}

// GoString will redact the secret
func (s Secret) GoString() string {
	return RedactedSecret
}

// MarshalJSON will redact the secret
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedSecret)
}
