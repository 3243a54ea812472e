package claims

// Well-known MicroProfile JWT claim names.
const (
	Issuer            = "iss"
	Subject           = "sub"
	Audience          = "aud"
	ExpirationTime    = "exp"
	NotBefore         = "nbf"
	IssuedAtTime      = "iat"
	JWTID             = "jti"
	UPN               = "upn"
	Groups            = "groups"
	RawToken          = "raw_token"
	AuthTime          = "auth_time"
	UpdatedAt         = "updated_at"
	PreferredUsername = "preferred_username"
	Nonce             = "nonce"
	AtHash            = "at_hash"
	CHash             = "c_hash"
	FullName          = "name"
	FamilyName        = "family_name"
	GivenName         = "given_name"
	MiddleName        = "middle_name"
	NickName          = "nickname"
	Profile           = "profile"
	Picture           = "picture"
	Website           = "website"
	Email             = "email"
	EmailVerified     = "email_verified"
	Gender            = "gender"
	Birthdate         = "birthdate"
	ZoneInfo          = "zoneinfo"
	Locale            = "locale"
	PhoneNumber       = "phone_number"
	PhoneVerified     = "phone_number_verified"
	Address           = "address"
	ACR               = "acr"
	AMR               = "amr"
	SubJWK            = "sub_jwk"
	CNF               = "cnf"
	SessionID         = "sid"
)

var wellKnown = map[string]struct{}{
	Issuer: {}, Subject: {}, Audience: {}, ExpirationTime: {}, NotBefore: {},
	IssuedAtTime: {}, JWTID: {}, UPN: {}, Groups: {}, RawToken: {},
	AuthTime: {}, UpdatedAt: {}, PreferredUsername: {}, Nonce: {}, AtHash: {},
	CHash: {}, FullName: {}, FamilyName: {}, GivenName: {}, MiddleName: {},
	NickName: {}, Profile: {}, Picture: {}, Website: {}, Email: {},
	EmailVerified: {}, Gender: {}, Birthdate: {}, ZoneInfo: {}, Locale: {},
	PhoneNumber: {}, PhoneVerified: {}, Address: {}, ACR: {}, AMR: {},
	SubJWK: {}, CNF: {}, SessionID: {},
}

// IsWellKnown reports whether name is one of the standard MicroProfile JWT
// claim names.
func IsWellKnown(name string) bool {
	_, ok := wellKnown[name]
	return ok
}
