package maintenance

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// MaintTime 自定义时间类型.
type MaintTime time.Time

const (
	timeFormat = time.DateTime
	dateFormat = time.DateOnly
)

// MarshalJSON 实现json序列化接口.
func (t MaintTime) MarshalJSON() ([]byte, error) {
	formatted := fmt.Sprintf("\"%s\"", time.Time(t).Format(timeFormat))
	return []byte(formatted), nil
}

// UnmarshalJSON 实现json反序列化接口.
func (t *MaintTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid time value: %s", string(data))
	}
	// 去掉引号
	str := string(data)[1 : len(data)-1]
	parsed, err := time.Parse(timeFormat, str)
	if err != nil {
		// 兼容仅日期的输入，例如 "2025-01-14"
		parsed, err = time.Parse(dateFormat, str)
		if err != nil {
			return err
		}
	}
	*t = MaintTime(parsed)
	return nil
}

// Value 实现 driver.Valuer 接口.
func (t MaintTime) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan 实现 sql.Scanner 接口.
func (t *MaintTime) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = MaintTime(v)
	default:
		return fmt.Errorf("cannot scan type %T into MaintTime", value)
	}
	return nil
}

// String 实现 Stringer 接口.
func (t MaintTime) String() string {
	return time.Time(t).Format(timeFormat)
}

// UnmarshalParam 实现gin参数绑定接口.
func (t *MaintTime) UnmarshalParam(param string) error {
	if param == "" {
		return nil
	}
	parsed, err := time.Parse(dateFormat, param)
	if err != nil {
		return err
	}
	*t = MaintTime(parsed)
	return nil
}
