package packer

import (
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// PackEvent ABI-encodes an event struct. Indexed inputs become topics after
// the event ID, the rest is packed into the data blob. Struct field names
// must be the camel-cased ABI input names.
func PackEvent(eventStruct any, event abi.Event) (topics []ethcommon.Hash, data []byte, err error) {
	if eventStruct == nil {
		return nil, nil, errors.New("event struct is nil")
	}

	var noIndexedArgs []any
	topicArgs := [][]any{
		{event.ID},
	}
	v := reflect.ValueOf(eventStruct).Elem()
	for _, input := range event.Inputs {
		if !input.Indexed {
			noIndexedArgs = append(noIndexedArgs, v.FieldByName(abi.ToCamelCase(input.Name)).Interface())
		} else {
			topicArgs = append(topicArgs, []any{v.FieldByName(abi.ToCamelCase(input.Name)).Interface()})
		}
	}

	rawTopics, err := abi.MakeTopics(topicArgs...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "event %s make topics error", event.Name)
	}

	data, err = event.Inputs.NonIndexed().Pack(noIndexedArgs...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "event %s pack args error", event.Name)
	}

	topics = lo.Map(rawTopics, func(t []ethcommon.Hash, _ int) ethcommon.Hash {
		return t[0]
	})
	return topics, data, nil
}
