package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "status error", err: NewStatusError(404, ""), want: 404},
		{name: "wrapped", err: fmt.Errorf("fetch: %w", NewStatusError(500, "boom")), want: 500},
		{name: "plain error", err: errors.New("connection refused"), want: 0},
		{name: "cancelled", err: context.Canceled, want: 0},
		{name: "nil", err: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(NewStatusError(404, "")))
	assert.True(t, IsHidden(NewStatusError(403, "")))
	assert.False(t, IsHidden(NewStatusError(401, "")))
	assert.False(t, IsHidden(errors.New("network")))
}

func TestStatusError_Message(t *testing.T) {
	assert.Equal(t, "request failed with status 502", NewStatusError(502, "").Error())
	assert.Equal(t, "request failed with status 400: bad page", NewStatusError(400, "bad page").Error())
}

func TestActionSet_ActivationScheduled(t *testing.T) {
	tests := []struct {
		name string
		set  ActionSet
		want bool
	}{
		{
			name: "allowed without errors",
			set:  ActionSet{ActionActivate: {Allowed: true}},
			want: true,
		},
		{
			name: "allowed with only missing billing record",
			set: ActionSet{ActionActivate: {
				Allowed: true,
				Errors:  []ActionError{{Code: ErrCodeNoBillingRecord}},
			}},
			want: true,
		},
		{
			name: "allowed with blocking error",
			set: ActionSet{ActionActivate: {
				Allowed: true,
				Errors:  []ActionError{{Code: ErrCodeNoBillingRecord}, {Code: "NO_MANAGER"}},
			}},
			want: false,
		},
		{
			name: "not allowed",
			set:  ActionSet{ActionActivate: {Allowed: false}},
			want: false,
		},
		{
			name: "missing action",
			set:  ActionSet{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.ActivationScheduled())
		})
	}
}

func TestSubscriptionUser_Enriched(t *testing.T) {
	assert.False(t, SubscriptionUser{UserUUID: "u1"}.Enriched())
	assert.True(t, SubscriptionUser{UserUUID: "u1", Email: "a@b.c"}.Enriched())
	assert.True(t, SubscriptionUser{UserUUID: "u1", JobInfo: &JobInfo{Title: "CTO"}}.Enriched())
}
