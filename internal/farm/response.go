package farm

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// jobIDPath locates the farm-assigned job id in a submission response.
var jobIDPath = jp.MustParseString("$._id")

// ExtractJobID pulls the job id out of a submission response body. Any
// 2xx body without a usable id is a protocol error, not a rejection.
func ExtractJobID(body []byte) (string, error) {
	data, err := oj.Parse(body)
	if err != nil {
		return "", NewProtocolError("parse submission response", string(body), err)
	}

	results := jobIDPath.Get(data)
	if len(results) == 0 {
		return "", NewProtocolError("submission response carries no job id", string(body), nil)
	}
	id, ok := results[0].(string)
	if !ok || id == "" {
		return "", NewProtocolError(
			fmt.Sprintf("submission response job id has type %T", results[0]),
			string(body), nil)
	}
	return id, nil
}
