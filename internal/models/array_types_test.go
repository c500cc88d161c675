package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullString_JSON(t *testing.T) {
	empty, err := json.Marshal(NewNullString(""))
	require.NoError(t, err)
	assert.Equal(t, "null", string(empty))

	phone, err := json.Marshal(NewNullString("+2348012345678"))
	require.NoError(t, err)
	assert.Equal(t, `"+2348012345678"`, string(phone))

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"phone":"0771234567","address":null}`), &u))
	assert.True(t, u.Phone.Valid)
	assert.Equal(t, "0771234567", u.Phone.String)
	assert.False(t, u.Address.Valid)
}

func TestUpdateUserRequest_SetsNullableFields(t *testing.T) {
	phone, address := "0771234567", ""
	u := &User{}
	UpdateUserRequest{Phone: &phone, Address: &address}.ApplyTo(u)

	assert.Equal(t, NewNullString("0771234567"), u.Phone)
	assert.False(t, u.Address.Valid, "an empty address clears the column")
}
