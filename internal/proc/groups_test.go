package proc

import (
	"encoding/binary"
	"testing"

	"github.com/desertwitch/sysup/internal/syscalls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// groupsOf returns a getgroups implementation for the given list. The list
// to report can be swapped by the test between calls.
func groupsOf(list *[]uint32) func([]byte) (int, error) {
	return func(buf []byte) (int, error) {
		need := len(*list) * 4
		if len(buf) == 0 {
			return need, nil
		}
		if len(buf) < need {
			return -1, unix.EINVAL
		}
		for i, gid := range *list {
			binary.NativeEndian.PutUint32(buf[i*4:], gid)
		}

		return need, nil
	}
}

// TestGroups_Success tests probing and filling the group list.
func TestGroups_Success(t *testing.T) {
	t.Parallel()

	unixMock := new(mockUnix)
	h := NewHandler(new(mockOS), unixMock, syscalls.Limits{})

	list := []uint32{100, 1000, 65534}
	unixMock.On("Getgroups", mock.Anything).Return(groupsOf(&list), nil)

	gids, err := h.Groups()
	require.NoError(t, err)
	assert.Equal(t, []uint32{100, 1000, 65534}, gids)

	unixMock.AssertNumberOfCalls(t, "Getgroups", 2)
}

// TestGroups_Empty tests that no fill call is made for an empty list.
func TestGroups_Empty(t *testing.T) {
	t.Parallel()

	unixMock := new(mockUnix)
	h := NewHandler(new(mockOS), unixMock, syscalls.Limits{})

	list := []uint32{}
	unixMock.On("Getgroups", mock.Anything).Return(groupsOf(&list), nil)

	gids, err := h.Groups()
	require.NoError(t, err)
	assert.NotNil(t, gids)
	assert.Empty(t, gids)

	unixMock.AssertNumberOfCalls(t, "Getgroups", 1)
}

// TestGroups_Grown tests a list growing between probe and fill.
func TestGroups_Grown(t *testing.T) {
	t.Parallel()

	unixMock := new(mockUnix)
	h := NewHandler(new(mockOS), unixMock, syscalls.Limits{})

	list := []uint32{1}
	probes := 0
	unixMock.On("Getgroups", mock.Anything).Return(func(buf []byte) (int, error) {
		n, err := groupsOf(&list)(buf)
		if len(buf) == 0 {
			probes++
			if probes == 1 {
				list = []uint32{1, 2, 3}
			}
		}

		return n, err
	}, nil)

	gids, err := h.Groups()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, gids)
	assert.Equal(t, 2, probes)
}

// TestGroups_Fail tests that other errors are surfaced.
func TestGroups_Fail(t *testing.T) {
	t.Parallel()

	unixMock := new(mockUnix)
	h := NewHandler(new(mockOS), unixMock, syscalls.Limits{})

	unixMock.On("Getgroups", mock.Anything).Return(-1, unix.EFAULT)

	_, err := h.Groups()
	require.ErrorIs(t, err, unix.EFAULT)
	assert.Contains(t, err.Error(), "(proc-groups)")
}

// TestGroups_Real tests the result against the x/sys implementation.
func TestGroups_Real(t *testing.T) {
	t.Parallel()

	h := NewHandler(&syscalls.OS{}, &syscalls.Unix{}, syscalls.Limits{})

	gids, err := h.Groups()
	require.NoError(t, err)

	want, err := unix.Getgroups()
	require.NoError(t, err)

	got := make([]int, 0, len(gids))
	for _, gid := range gids {
		got = append(got, int(gid))
	}
	if len(want) == 0 {
		assert.Empty(t, got)
	} else {
		assert.Equal(t, want, got)
	}
}
