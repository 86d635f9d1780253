package migrations

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(upAddWorkOrderGuardIndex, downAddWorkOrderGuardIndex)
}

// 为重复工单检查添加组合索引：按资产+类型+状态查询未关闭的PM工单
func upAddWorkOrderGuardIndex(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE INDEX idx_work_orders_asset_type_status
		ON work_orders (asset_id, type, status);
	`)
	return err
}

func downAddWorkOrderGuardIndex(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DROP INDEX idx_work_orders_asset_type_status ON work_orders;
	`)
	return err
}
