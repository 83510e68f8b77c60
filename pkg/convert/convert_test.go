// Copyright (c) 2026 GenrA. All rights reserved.

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genra-app/genra/pkg/convert"
)

func TestInt(t *testing.T) {
	assert.Equal(t, 7, convert.Int(" 7 ", 1))
	assert.Equal(t, -3, convert.Int("-3", 1))
	assert.Equal(t, 1, convert.Int("", 1))
	assert.Equal(t, 1, convert.Int("7a", 1))
}
