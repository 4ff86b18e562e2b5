package index

import (
	"fmt"

	"github.com/dolthub/nose-advisor/schema"
)

var errNoHashFields = fmt.Errorf("index: hash_fields must be non-empty")

var errLastEntityUncovered = fmt.Errorf("index: path's last entity contributes no identity field to hash or order")

func fieldOverlapError(f schema.FieldID, prevRole, role string) error {
	return fmt.Errorf("index: field %d assigned to both %s and %s", f, prevRole, role)
}

func fieldNotOnPathError(f schema.FieldID) error {
	return fmt.Errorf("index: field %d's parent entity does not lie on the index path", f)
}
