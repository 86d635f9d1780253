package service_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cmms-ng/internal/service"
	"cmms-ng/models/maintenance"
	cmmsredis "cmms-ng/pkg/redis"
)

// MockRedisHandler 是 RedisHandlerInterface 的一个简单 mock 实现，
// 用内存map模拟键值存储
type MockRedisHandler struct {
	lockResult bool
	published  []string
	store      map[string]string
}

func NewMockRedisHandler() *MockRedisHandler {
	return &MockRedisHandler{
		lockResult: true,
		store:      make(map[string]string),
	}
}

func (m *MockRedisHandler) AcquireLock(key, value string, expiration time.Duration) (bool, error) {
	return m.lockResult, nil
}

func (m *MockRedisHandler) Get(key string) string {
	return m.store[key]
}

func (m *MockRedisHandler) SetWithExpireTime(key, value string, expiration time.Duration) {
	m.store[key] = value
}

func (m *MockRedisHandler) ScanKeys(pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.store {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MockRedisHandler) Delete(key string) {
	delete(m.store, key)
}

func (m *MockRedisHandler) Pub(channel, message string) error {
	m.published = append(m.published, message)
	return nil
}

var _ = Describe("PMGeneratorService", func() {
	var (
		db        *gorm.DB
		svc       *service.PMGeneratorService
		dbPath    string
		zlog, _   = zap.NewDevelopment()
		mockRedis *MockRedisHandler
	)

	// 在每个测试开始前，设置测试环境
	BeforeEach(func() {
		// 使用临时的SQLite数据库文件
		dbPath = fmt.Sprintf("test_db_%d.db", time.Now().UnixNano())
		var err error
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		// 自动迁移模型
		err = db.AutoMigrate(
			&maintenance.Asset{},
			&maintenance.WorkOrder{},
			&maintenance.PMRunHistory{},
		)
		Expect(err).NotTo(HaveOccurred())

		mockRedis = NewMockRedisHandler()
		svc = service.NewPMGeneratorService(db, mockRedis, zlog)
	})

	// 在每个测试结束后，清理环境
	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())

		// 删除临时的数据库文件
		err = os.Remove(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	// 创建测试资产的辅助函数
	createAsset := func(name string, next *time.Time, autoGenerate bool, status maintenance.AssetStatus) *maintenance.Asset {
		asset := &maintenance.Asset{
			Name:             name,
			SerialNumber:     fmt.Sprintf("SN-%s-%d", name, time.Now().UnixNano()),
			Location:         "Building A",
			Status:           status,
			AutoGenerateWO:   autoGenerate,
			ComplianceStatus: maintenance.ComplianceStatusCompliant,
		}
		if next != nil {
			mt := maintenance.MaintTime(*next)
			asset.NextMaintenance = &mt
		}
		err := db.Create(asset).Error
		Expect(err).NotTo(HaveOccurred())
		return asset
	}

	daysFromNow := func(days int) *time.Time {
		t := time.Now().AddDate(0, 0, days)
		return &t
	}

	Describe("GeneratePreventiveWorkOrders", func() {
		Context("当资产已逾期时", func() {
			It("应生成紧急工单并将资产标记为不合规", func() {
				asset := createAsset("HVAC-001", daysFromNow(-9), true, maintenance.AssetStatusActive)

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Result).To(Equal(service.PMRunResultCompleted))
				Expect(summary.Generated).To(Equal(1))
				Expect(summary.Overdue).To(Equal(1))

				var wo maintenance.WorkOrder
				err = db.Where("asset_id = ?", asset.ID).First(&wo).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(wo.Type).To(Equal(maintenance.WorkOrderTypePreventive))
				Expect(wo.Status).To(Equal(maintenance.WorkOrderStatusOpen))
				Expect(wo.Priority).To(Equal(maintenance.WorkOrderPriorityCritical))
				Expect(wo.Title).To(ContainSubstring("PM Overdue"))
				Expect(wo.Description).To(ContainSubstring("overdue by 9 day(s)"))
				Expect(wo.EstimatedHours).To(Equal(float64(service.DefaultEstimatedHours)))
				Expect(wo.CreatedBy).To(Equal(service.SystemAutoCreator))
				Expect(wo.WorkOrderNumber).To(HavePrefix("WO-"))

				// 紧急工单的截止时间是运行当天，不是原定维护日期
				Expect(wo.DueDate).NotTo(BeNil())
				Expect(time.Time(*wo.DueDate).Sub(time.Time(summary.RunTime))).To(BeNumerically("<", time.Second))

				var updated maintenance.Asset
				err = db.First(&updated, asset.ID).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.ComplianceStatus).To(Equal(maintenance.ComplianceStatusNonCompliant))
			})
		})

		Context("当资产即将到期时", func() {
			It("应生成中优先级计划工单并记录生成时间", func() {
				asset := createAsset("GEN-002", daysFromNow(3), true, maintenance.AssetStatusActive)

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(1))
				Expect(summary.Overdue).To(Equal(0))

				var wo maintenance.WorkOrder
				err = db.Where("asset_id = ?", asset.ID).First(&wo).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(wo.Priority).To(Equal(maintenance.WorkOrderPriorityMedium))
				Expect(wo.Title).To(ContainSubstring("PM Scheduled"))
				Expect(wo.Description).To(ContainSubstring("due on"))

				// 计划工单的截止时间是原定维护日期
				Expect(wo.DueDate).NotTo(BeNil())
				Expect(time.Time(*wo.DueDate).Format(time.DateOnly)).
					To(Equal(time.Time(*asset.NextMaintenance).Format(time.DateOnly)))

				var updated maintenance.Asset
				err = db.First(&updated, asset.ID).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.ComplianceStatus).To(Equal(maintenance.ComplianceStatusNeedsAttention))
				Expect(updated.PMLastGeneratedAt).NotTo(BeNil())
			})
		})

		Context("窗口边界", func() {
			It("第7天应生成工单，第8天不应生成", func() {
				createAsset("ELEV-003", daysFromNow(7), true, maintenance.AssetStatusActive)
				createAsset("PUMP-004", daysFromNow(8), true, maintenance.AssetStatusActive)

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(1))

				var count int64
				err = db.Model(&maintenance.WorkOrder{}).Count(&count).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(int64(1)))
			})
		})

		Context("资产不符合条件时", func() {
			It("应跳过未启用自动生成、非在用或未排期的资产", func() {
				createAsset("ELEV-005", daysFromNow(-3), false, maintenance.AssetStatusActive)
				createAsset("CT-006", daysFromNow(-3), true, maintenance.AssetStatusRetired)
				createAsset("AHU-007", nil, true, maintenance.AssetStatusActive)

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(0))
				Expect(summary.Result).To(Equal(service.PMRunResultCompleted))
			})
		})

		Context("资产已有未关闭的PM工单时", func() {
			It("不应重复生成工单", func() {
				asset := createAsset("HVAC-001", daysFromNow(-5), true, maintenance.AssetStatusActive)

				// 第一次运行生成工单
				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(1))

				// 第二次运行应被重复检查挡住
				summary, err = svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(0))

				var count int64
				err = db.Model(&maintenance.WorkOrder{}).Where("asset_id = ?", asset.ID).Count(&count).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(int64(1)))
			})

			It("已完成或已取消的历史工单不应阻止生成", func() {
				asset := createAsset("GEN-002", daysFromNow(-2), true, maintenance.AssetStatusActive)

				completion := maintenance.MaintTime(time.Now().AddDate(0, -1, 0))
				done := maintenance.WorkOrder{
					WorkOrderNumber: "WO-20250101-000001",
					AssetID:         asset.ID,
					Title:           "历史维护工单",
					Type:            maintenance.WorkOrderTypePreventive,
					Status:          maintenance.WorkOrderStatusCompleted,
					Priority:        maintenance.WorkOrderPriorityMedium,
					CompletionTime:  &completion,
				}
				Expect(db.Create(&done).Error).NotTo(HaveOccurred())

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(1))
			})

			It("非预防性维护的未关闭工单不应阻止生成", func() {
				asset := createAsset("PUMP-004", daysFromNow(-2), true, maintenance.AssetStatusActive)

				corrective := maintenance.WorkOrder{
					WorkOrderNumber: "WO-20250102-000002",
					AssetID:         asset.ID,
					Title:           "泵体异响维修",
					Type:            maintenance.WorkOrderTypeCorrective,
					Status:          maintenance.WorkOrderStatusOpen,
					Priority:        maintenance.WorkOrderPriorityHigh,
				}
				Expect(db.Create(&corrective).Error).NotTo(HaveOccurred())

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(1))
			})
		})

		Context("混合资产场景", func() {
			It("应按到期状态分别处理每个资产并记录运行历史", func() {
				createAsset("HVAC-001", daysFromNow(-9), true, maintenance.AssetStatusActive)
				createAsset("GEN-002", daysFromNow(3), true, maintenance.AssetStatusActive)
				createAsset("PUMP-004", daysFromNow(30), true, maintenance.AssetStatusActive)

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Generated).To(Equal(2))
				Expect(summary.Overdue).To(Equal(1))
				Expect(summary.Result).To(Equal(service.PMRunResultCompleted))

				var histories []maintenance.PMRunHistory
				err = db.Find(&histories).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(histories).To(HaveLen(1))
				Expect(histories[0].Result).To(Equal(service.PMRunResultCompleted))
				Expect(histories[0].GeneratedCount).To(Equal(2))
				Expect(histories[0].UrgentCount).To(Equal(1))
			})
		})

		Context("运行汇总通知", func() {
			It("生成工单后应发布单条汇总通知", func() {
				createAsset("HVAC-001", daysFromNow(-1), true, maintenance.AssetStatusActive)
				createAsset("GEN-002", daysFromNow(2), true, maintenance.AssetStatusActive)

				_, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())

				// 整轮运行只发一条通知
				Expect(mockRedis.published).To(HaveLen(1))
				Expect(mockRedis.published[0]).To(ContainSubstring(`"generated":2`))
			})

			It("未生成任何工单时不应发布通知", func() {
				createAsset("PUMP-004", daysFromNow(30), true, maintenance.AssetStatusActive)

				_, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(mockRedis.published).To(BeEmpty())
			})
		})

		Context("资产缓存", func() {
			It("生成工单并回写资产后应清除资产列表缓存", func() {
				createAsset("HVAC-001", daysFromNow(-1), true, maintenance.AssetStatusActive)

				keyBuilder := cmmsredis.NewKeyBuilder(cmmsredis.GlobalPrefix, "v1")
				listKey := keyBuilder.AssetListKey("status=&compliance=&page=1&size=10")
				mockRedis.store[listKey] = `{"items":[],"total":0}`

				_, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(mockRedis.store).NotTo(HaveKey(listKey))
			})

			It("未生成任何工单时列表缓存保持不变", func() {
				createAsset("PUMP-004", daysFromNow(30), true, maintenance.AssetStatusActive)

				keyBuilder := cmmsredis.NewKeyBuilder(cmmsredis.GlobalPrefix, "v1")
				listKey := keyBuilder.AssetListKey("status=&compliance=&page=1&size=10")
				mockRedis.store[listKey] = `{"items":[],"total":0}`

				_, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(mockRedis.store).To(HaveKey(listKey))
			})
		})

		Context("跨实例锁被其他实例持有时", func() {
			It("应跳过本次运行并记录历史", func() {
				mockRedis.lockResult = false
				createAsset("HVAC-001", daysFromNow(-1), true, maintenance.AssetStatusActive)

				summary, err := svc.GeneratePreventiveWorkOrders(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(summary.Result).To(Equal(service.PMRunResultSkippedLockHeld))
				Expect(summary.Generated).To(Equal(0))

				var count int64
				err = db.Model(&maintenance.WorkOrder{}).Count(&count).Error
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(int64(0)))
			})
		})
	})

	Describe("Status", func() {
		It("应返回最近一次运行的汇总", func() {
			createAsset("HVAC-001", daysFromNow(-1), true, maintenance.AssetStatusActive)

			status := svc.Status()
			Expect(status.Running).To(BeFalse())
			Expect(status.LastRun).To(BeNil())

			_, err := svc.GeneratePreventiveWorkOrders(context.Background())
			Expect(err).NotTo(HaveOccurred())

			status = svc.Status()
			Expect(status.Running).To(BeFalse())
			Expect(status.LastRun).NotTo(BeNil())
			Expect(status.LastRun.Generated).To(Equal(1))
		})
	})

	Describe("ListRunHistories", func() {
		It("应按运行时间倒序分页返回历史", func() {
			createAsset("HVAC-001", daysFromNow(-1), true, maintenance.AssetStatusActive)

			_, err := svc.GeneratePreventiveWorkOrders(context.Background())
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.GeneratePreventiveWorkOrders(context.Background())
			Expect(err).NotTo(HaveOccurred())

			items, total, err := svc.ListRunHistories(context.Background(), 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(items).To(HaveLen(2))
			// 第二次运行没有生成新工单
			Expect(items[0].GeneratedCount + items[1].GeneratedCount).To(Equal(1))
		})
	})
})
