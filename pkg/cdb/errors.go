package cdb

import "errors"

// ErrParsingCDB indicates the compile database body could not be parsed as
// a JSON array of entries. Corresponds to ERROR_PARSING_CDB in §8 scenario 1.
var ErrParsingCDB = errors.New("error parsing compile database")
