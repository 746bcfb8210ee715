package serializer

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func Test_pbPageRequest_RoundTrip(t *testing.T) {
	msg := pbPageRequest{
		positions: []pbPosition{
			{attribute: "name", value: &pbValue{value: "bob"}, order: pbOrderDESC, ignoreCase: true, reversed: true},
			{attribute: "email", value: &pbValue{isNull: true}},
			{attribute: "id", value: &pbValue{}},
			{attribute: "rank"},
		},
		filters: &pbFilterList{
			typ: pbListOR,
			filters: []pbFilter{
				{typ: pbFilterLIKE, attribute: "name", values: []pbValue{{value: "a%"}, {value: "b%"}}, ignoreCase: true},
			},
			lists: []pbFilterList{
				{filters: []pbFilter{{typ: pbFilterGE, attribute: "id", values: []pbValue{{value: "-3"}}}}},
			},
		},
		pageSize:   25,
		totalCount: lo.ToPtr[int64](0),
		rules: []pbRule{
			{name: "status", parameters: []pbParameter{{name: "states", values: []string{"a", "", "b"}}}},
		},
		enableTotalCount: true,
	}

	var got pbPageRequest
	require.NoError(t, got.unmarshal(msg.marshal(nil)))
	assert.Equal(t, msg, got)
}

func Test_pbPageRequest_SkipsUnknownFields(t *testing.T) {
	msg := pbPageRequest{pageSize: 10}
	b := msg.marshal(nil)
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 12345)
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	var got pbPageRequest
	require.NoError(t, got.unmarshal(b))
	assert.Equal(t, int32(10), got.pageSize)
}

func Test_pbPageRequest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "truncated tag", data: []byte{0x80}},
		{name: "truncated length", data: []byte{0x0a, 0x05, 0x01}},
		{name: "truncated nested message", data: []byte{0x0a, 0x02, 0x0a, 0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got pbPageRequest
			require.Error(t, got.unmarshal(tt.data))
		})
	}
}
