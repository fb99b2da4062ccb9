package types

// Permissions is the access level a transaction requests on a page
type Permissions int32

const (
	READ_ONLY Permissions = iota
	READ_WRITE
)

func (p Permissions) IsValid() bool {
	return p == READ_ONLY || p == READ_WRITE
}

func (p Permissions) String() string {
	switch p {
	case READ_ONLY:
		return "READ_ONLY"
	case READ_WRITE:
		return "READ_WRITE"
	}
	return "UNKNOWN"
}
