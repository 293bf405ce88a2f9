package words

import (
	"fmt"

	"github.com/mcoot/anagrams-go/internal/model"
)

// ErrUnavailable is returned when no round data can be produced
var ErrUnavailable = fmt.Errorf("words provider: %w", model.ErrRoundDataUnavailable)
