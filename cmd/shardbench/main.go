package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sublimes-drive/drive-core/internal/model"
	"github.com/sublimes-drive/drive-core/internal/repository"
)

const (
	// 测试参数
	UserCount       = 10000 // 1万用户
	OrdersPerUser   = 10    // 每个用户10个订单
	BenchDuration   = 30    // 查询压测时长（秒）
	ConcurrentLevel = 100   // 并发数

	// 数据库连接参数
	SingleDBPort     = 5434
	ShardDBStartPort = 5440
)

var orderKinds = []string{
	model.OrderKindWalletCredit,
	model.OrderKindListingFee,
	model.OrderKindOfferPurchase,
	model.OrderKindParts,
}

type BenchResult struct {
	Name            string
	Duration        time.Duration
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	QPS             float64
	AvgLatency      time.Duration
	P50Latency      time.Duration
	P95Latency      time.Duration
	P99Latency      time.Duration
}

func main() {
	ctx := context.Background()

	fmt.Println("===== 订单分库分表性能压测 =====")
	fmt.Printf("用户数: %d\n", UserCount)
	fmt.Printf("每用户订单数: %d\n", OrdersPerUser)
	fmt.Printf("查询压测时长: 每场景 %d秒\n", BenchDuration)
	fmt.Printf("并发数: %d\n\n", ConcurrentLevel)

	userIDs := make([]string, UserCount)
	for i := range userIDs {
		userIDs[i] = uuid.NewString()
	}

	// ========== 单库压测 ==========
	fmt.Println(">>> 准备单库环境...")
	singleRepo := prepareSingleDB()
	if singleRepo == nil {
		fmt.Println("单库初始化失败")
		return
	}
	defer singleRepo.Close()

	singleOrders := generateTestOrders(userIDs)
	fmt.Printf("生成了 %d 个测试订单\n\n", len(singleOrders))

	fmt.Println("===== 单库压测 - 插入订单 =====")
	singleInsert := benchInsert(ctx, singleRepo, singleOrders, "单库")
	printBenchResult(singleInsert)

	time.Sleep(1 * time.Second)

	fmt.Println("\n===== 单库压测 - 按订单ID查询 =====")
	singleByID := benchQuery(ctx, "单库", func(ctx context.Context) error {
		o := singleOrders[rand.Intn(1000)]
		_, err := singleRepo.GetByID(ctx, o.ID)
		return err
	})
	printBenchResult(singleByID)

	fmt.Println("\n===== 单库压测 - 按用户ID查询 =====")
	singleByUser := benchQuery(ctx, "单库", func(ctx context.Context) error {
		_, err := singleRepo.GetByUserID(ctx, userIDs[rand.Intn(UserCount)], 20)
		return err
	})
	printBenchResult(singleByUser)

	fmt.Println("\n>>> 清理单库连接...")
	singleRepo.Close()

	// ========== 分库分表压测 ==========
	fmt.Println("\n>>> 准备分库分表环境...")
	shardedRepo := prepareShardedDB()
	if shardedRepo == nil {
		fmt.Println("分库分表初始化失败")
		return
	}
	defer shardedRepo.Close()

	shardedOrders := generateTestOrders(userIDs)
	fmt.Printf("生成了 %d 个测试订单\n\n", len(shardedOrders))

	fmt.Println("===== 分库分表压测 - 插入订单 =====")
	shardedInsert := benchInsert(ctx, shardedRepo, shardedOrders, "分库分表")
	printBenchResult(shardedInsert)

	time.Sleep(1 * time.Second)

	fmt.Println("\n===== 分库分表压测 - 按订单ID查询 =====")
	shardedByID := benchQuery(ctx, "分库分表", func(ctx context.Context) error {
		o := shardedOrders[rand.Intn(1000)]
		_, err := shardedRepo.GetByID(ctx, o.ID)
		return err
	})
	printBenchResult(shardedByID)

	fmt.Println("\n===== 分库分表压测 - 按用户ID查询 =====")
	shardedByUser := benchQuery(ctx, "分库分表", func(ctx context.Context) error {
		_, err := shardedRepo.GetByUserID(ctx, userIDs[rand.Intn(UserCount)], 20)
		return err
	})
	printBenchResult(shardedByUser)

	// ========== 打印对比总结 ==========
	fmt.Println("\n===== 性能对比总结 =====")
	printComparison("插入订单", singleInsert, shardedInsert)
	printComparison("按订单ID查询", singleByID, shardedByID)
	printComparison("按用户ID查询", singleByUser, shardedByUser)
}

// prepareSingleDB 准备单库环境
func prepareSingleDB() repository.OrderRepository {
	dsn := fmt.Sprintf("host=localhost user=postgres password=postgres dbname=drive port=%d sslmode=disable", SingleDBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("连接单库失败: %v\n", err)
		return nil
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetMaxIdleConns(50)

	repo := repository.NewSingleDBOrderRepository(db)

	db.Exec("DROP TABLE IF EXISTS orders")
	if err := repo.(*repository.SingleDBOrderRepository).InitSchema(); err != nil {
		fmt.Printf("初始化单库表结构失败: %v\n", err)
		return nil
	}

	fmt.Println("单库环境准备完成")
	return repo
}

// prepareShardedDB 准备分库分表环境
func prepareShardedDB() repository.OrderRepository {
	var dbs []*gorm.DB

	for i := 0; i < repository.ShardCount; i++ {
		port := ShardDBStartPort + i
		dbName := fmt.Sprintf("orders_shard_%d", i)
		dsn := fmt.Sprintf("host=localhost user=postgres password=postgres dbname=%s port=%d sslmode=disable", dbName, port)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			fmt.Printf("连接分片数据库 %d 失败: %v\n", i, err)
			return nil
		}

		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(150)
		sqlDB.SetMaxIdleConns(30)

		dbs = append(dbs, db)

		for j := 0; j < repository.TableCount; j++ {
			db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS orders_%d", j))
		}
	}

	repo, err := repository.NewShardedOrderRepository(dbs)
	if err != nil {
		fmt.Printf("创建分库分表仓储失败: %v\n", err)
		return nil
	}

	if err := repo.(*repository.ShardedOrderRepository).InitSchema(); err != nil {
		fmt.Printf("初始化分库分表表结构失败: %v\n", err)
		return nil
	}

	fmt.Println("分库分表环境准备完成")
	return repo
}

// generateTestOrders 生成测试订单数据
func generateTestOrders(userIDs []string) []*model.Order {
	orders := make([]*model.Order, 0, len(userIDs)*OrdersPerUser)
	baseTime := time.Now().Add(-30 * 24 * time.Hour)

	for _, userID := range userIDs {
		for i := 0; i < OrdersPerUser; i++ {
			amount := int64(rand.Intn(100000) + 100) // 1-1000 AED，最小货币单位
			orders = append(orders, &model.Order{
				ID:        uuid.NewString(),
				UserID:    userID,
				Kind:      orderKinds[rand.Intn(len(orderKinds))],
				Status:    model.OrderStatusPending,
				Currency:  "AED",
				Amount:    &amount,
				CreatedAt: baseTime.Add(time.Duration(rand.Intn(30*24*60)) * time.Minute),
			})
		}
	}
	return orders
}

// benchInsert 压测插入性能（插入所有数据，不限制时间）
func benchInsert(ctx context.Context, repo repository.OrderRepository, orders []*model.Order, name string) *BenchResult {
	var (
		totalRequests   int64
		successRequests int64
		failedRequests  int64
		latencies       []time.Duration
		latencyMu       sync.Mutex
		wg              sync.WaitGroup
	)

	fmt.Printf("开始插入 %d 个订单...\n", len(orders))
	startTime := time.Now()

	for i := 0; i < ConcurrentLevel; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := workerID; idx < len(orders); idx += ConcurrentLevel {
				reqStart := time.Now()
				err := repo.Create(ctx, orders[idx])
				latency := time.Since(reqStart)

				atomic.AddInt64(&totalRequests, 1)
				if err != nil {
					if atomic.AddInt64(&failedRequests, 1) <= 10 {
						fmt.Printf("插入失败: %v (order_id=%s)\n", err, orders[idx].ID)
					}
				} else {
					atomic.AddInt64(&successRequests, 1)
				}

				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	duration := time.Since(startTime)
	fmt.Printf("插入完成，耗时: %v\n", duration.Round(time.Second))
	return calculateResult(name, duration, totalRequests, successRequests, failedRequests, latencies)
}

// benchQuery 压测查询性能（固定时长）
func benchQuery(ctx context.Context, name string, query func(context.Context) error) *BenchResult {
	var (
		totalRequests   int64
		successRequests int64
		failedRequests  int64
		latencies       []time.Duration
		latencyMu       sync.Mutex
		wg              sync.WaitGroup
	)

	startTime := time.Now()
	stopTime := startTime.Add(BenchDuration * time.Second)

	for i := 0; i < ConcurrentLevel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(stopTime) {
				reqStart := time.Now()
				err := query(ctx)
				latency := time.Since(reqStart)

				atomic.AddInt64(&totalRequests, 1)
				if err != nil {
					atomic.AddInt64(&failedRequests, 1)
				} else {
					atomic.AddInt64(&successRequests, 1)
				}

				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}()
	}
	wg.Wait()

	return calculateResult(name, time.Since(startTime), totalRequests, successRequests, failedRequests, latencies)
}

// calculateResult 计算压测结果
func calculateResult(name string, duration time.Duration, total, success, failed int64, latencies []time.Duration) *BenchResult {
	if len(latencies) == 0 {
		return &BenchResult{Name: name, Duration: duration}
	}

	qps := float64(total) / duration.Seconds()

	var totalLatency time.Duration
	for _, l := range latencies {
		totalLatency += l
	}
	avgLatency := totalLatency / time.Duration(len(latencies))

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return &BenchResult{
		Name:            name,
		Duration:        duration,
		TotalRequests:   total,
		SuccessRequests: success,
		FailedRequests:  failed,
		QPS:             qps,
		AvgLatency:      avgLatency,
		P50Latency:      percentile(sorted, 0.50),
		P95Latency:      percentile(sorted, 0.95),
		P99Latency:      percentile(sorted, 0.99),
	}
}

// percentile 计算百分位数
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := int(math.Ceil(float64(len(sorted))*p)) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// printBenchResult 打印压测结果
func printBenchResult(result *BenchResult) {
	fmt.Printf("名称: %s\n", result.Name)
	fmt.Printf("耗时: %v\n", result.Duration)
	fmt.Printf("总请求数: %d\n", result.TotalRequests)
	fmt.Printf("成功请求: %d\n", result.SuccessRequests)
	fmt.Printf("失败请求: %d\n", result.FailedRequests)
	fmt.Printf("QPS: %.2f\n", result.QPS)
	fmt.Printf("平均延迟: %v\n", result.AvgLatency)
	fmt.Printf("P50 延迟: %v\n", result.P50Latency)
	fmt.Printf("P95 延迟: %v\n", result.P95Latency)
	fmt.Printf("P99 延迟: %v\n", result.P99Latency)
}

// printComparison 打印对比结果
func printComparison(operation string, single, sharded *BenchResult) {
	fmt.Printf("\n--- %s ---\n", operation)
	fmt.Printf("单库 QPS: %.2f\n", single.QPS)
	fmt.Printf("分库 QPS: %.2f\n", sharded.QPS)
	if single.QPS > 0 {
		fmt.Printf("性能提升: %.2f%%\n", (sharded.QPS-single.QPS)/single.QPS*100)
	}
	fmt.Printf("单库 P95: %v\n", single.P95Latency)
	fmt.Printf("分库 P95: %v\n", sharded.P95Latency)
}
