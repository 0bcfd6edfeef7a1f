package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGripValidateAcceptsWellOrderedRange(t *testing.T) {
	var g = Grip{GripID: "grip:0000000000001:01ARZ3NDEKTSV4RRFFQ69G5FAV", EventIDStart: 10, EventIDEnd: 12}
	require.NoError(t, g.Validate())
}

func TestGripValidateAcceptsSingleEventGrip(t *testing.T) {
	var g = Grip{GripID: "grip:0000000000001:01ARZ3NDEKTSV4RRFFQ69G5FAV", EventIDStart: 5, EventIDEnd: 5}
	require.NoError(t, g.Validate())
}

func TestGripValidateRejectsInvertedRange(t *testing.T) {
	var g = Grip{GripID: "grip:0000000000001:01ARZ3NDEKTSV4RRFFQ69G5FAV", EventIDStart: 12, EventIDEnd: 10}
	require.Error(t, g.Validate())
}
