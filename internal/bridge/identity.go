package bridge

import (
	"fmt"

	"go.uber.org/zap"
)

// ScriptIdentity names the script instance on whose behalf a call runs.
// The zero value is the host itself.
type ScriptIdentity struct {
	SID  uint32
	Name string
}

// HostIdentity is used for calls issued by native Go code.
var HostIdentity = ScriptIdentity{Name: "host"}

func (id ScriptIdentity) String() string {
	if id.Name == "" {
		return fmt.Sprintf("script#%d", id.SID)
	}
	return fmt.Sprintf("script#%d(%s)", id.SID, id.Name)
}

// Fields returns zap fields identifying the script in log lines.
func (id ScriptIdentity) Fields() []zap.Field {
	return []zap.Field{zap.Uint32("sid", id.SID), zap.String("script", id.Name)}
}
