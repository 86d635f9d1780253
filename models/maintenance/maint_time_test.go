package maintenance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintTimeUnmarshalJSON(t *testing.T) {
	var mt MaintTime
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-14 08:30:00"`), &mt))
	assert.Equal(t, time.Date(2025, time.January, 14, 8, 30, 0, 0, time.UTC), time.Time(mt))

	// 仅日期的输入走日期格式回退
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-14"`), &mt))
	assert.Equal(t, time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC), time.Time(mt))
}

func TestMaintTimeUnmarshalJSONRejectsNonString(t *testing.T) {
	type payload struct {
		DueDate *MaintTime `json:"dueDate"`
	}

	// 数字等非字符串值不应panic，应返回错误
	var p payload
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate": 5}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate": true}`), &p))

	// null 保持零值且不报错
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": null}`), &p))
}
