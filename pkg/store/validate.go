package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/arrange/pkg/model"
)

func validateItem(it model.Item) error {
	if strings.TrimSpace(it.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if it.Status != "" && !it.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, it.Status)
	}
	if err := validateRemarks(it.Remarks); err != nil {
		return err
	}
	if it.WindowStart != nil && it.WindowEnd != nil {
		return validateWindow(*it.WindowStart, *it.WindowEnd)
	}
	return nil
}

func validateUpdate(u model.Update) error {
	if v, ok := u.Subject.Get(); ok && strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if v, ok := u.Status.Get(); ok && !v.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, v)
	}
	if v, ok := u.Remarks.Get(); ok {
		if err := validateRemarks(v); err != nil {
			return err
		}
	}
	start, startSet := u.WindowStart.Get()
	end, endSet := u.WindowEnd.Get()
	if startSet && endSet {
		return validateWindow(start, end)
	}
	return nil
}

func validateRemarks(r *model.Remarks) error {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case model.RemarksText, model.RemarksMarkdown:
		return nil
	}
	return fmt.Errorf("%w: unknown remarks type %q", ErrValidation, r.Kind)
}

func validateWindow(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: window start %s is after window end %s", ErrValidation,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}
