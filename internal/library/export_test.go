// Copyright (c) 2026 GenrA. All rights reserved.

package library

import "time"

// SetClock replaces the service clock in tests.
func (service *Service) SetClock(now func() time.Time) {
	service.now = now
}
