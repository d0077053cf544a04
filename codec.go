package nativeusers

const (
	fieldUsername     = "username"
	fieldPasswordHash = "passwordHash"
	fieldRoles        = "roles"
	fieldFullName     = "fullName"
	fieldEmail        = "email"
	fieldMetadata     = "metadata"
)

// encodeUser writes every field, including empty ones, to a generic
// attribute map so round-tripping through the backing store preserves
// the shape of the record exactly.
func encodeUser(username string, u *User) map[string]any {
	return map[string]any{
		fieldUsername:     username,
		fieldPasswordHash: u.PasswordHash,
		fieldRoles:        append([]string{}, u.Roles...),
		fieldFullName:     u.FullName,
		fieldEmail:        u.Email,
		fieldMetadata:     u.Metadata,
	}
}

// decodeUser decodes source into a User, hash included. It requires
// passwordHash and roles; the remaining fields are optional. A missing
// or malformed passwordHash or roles makes the whole record undecodable
// — the caller is expected to log and skip it, never surface the
// failure to a reader. An optional field of the wrong type decodes as
// its zero value.
func decodeUser(username string, source map[string]any, version int64) (*User, bool) {
	if source == nil {
		return nil, false
	}

	passwordHash, ok := source[fieldPasswordHash].(string)
	if !ok {
		return nil, false
	}

	rawRoles, ok := source[fieldRoles]
	if !ok {
		return nil, false
	}
	roles, ok := decodeStringSlice(rawRoles)
	if !ok {
		return nil, false
	}

	fullName, _ := source[fieldFullName].(string)
	email, _ := source[fieldEmail].(string)
	metadata, _ := source[fieldMetadata].(map[string]any)

	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
		FullName:     fullName,
		Email:        email,
		Metadata:     metadata,
		Version:      version,
	}, true
}

// decodeStringSlice accepts either a []string (the shape a Go-native
// backing store implementation might already hand back) or a []any of
// strings (the shape produced by JSON-decoding a document store field,
// e.g. redisdoc), and rejects anything else.
func decodeStringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
