package protocol

import "github.com/lowlevl/pqcore/codes"

func codeOf(s string) codes.Code {
	if s == "" {
		return codes.Uncategorized
	}

	return codes.Code(s)
}
