package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rein-lin153/CableWeb/internal/config"
	"github.com/rein-lin153/CableWeb/internal/entity"
	"github.com/rein-lin153/CableWeb/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

const marketCacheKey = "market:copper:latest"

// MarketService 铜价行情服务：定时抓取新浪期货沪铜主连报价和美元汇率，
// 落库追加历史并缓存最新一条。
type MarketService struct {
	repo   *repository.MarketRepository
	rdb    *redis.Client
	cfg    config.MarketConfig
	client *http.Client
	logger *zap.Logger
}

func NewMarketService(repo *repository.MarketRepository, rdb *redis.Client, cfg config.MarketConfig, logger *zap.Logger) *MarketService {
	return &MarketService{
		repo:   repo,
		rdb:    rdb,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		logger: logger,
	}
}

// Refresh 抓取一次行情并落库。任一上游失败则整体失败，不写入残缺数据。
func (s *MarketService) Refresh(ctx context.Context) (*entity.MarketPriceReading, error) {
	cny, err := s.fetchCopperCNY(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取沪铜报价失败: %w", errors.Join(err, ErrUpstreamUnavailable))
	}
	rate, err := s.fetchUSDRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取美元汇率失败: %w", errors.Join(err, ErrUpstreamUnavailable))
	}

	reading := &entity.MarketPriceReading{
		CnyPrice:     cny,
		UsdPrice:     Round2(cny / rate),
		ExchangeRate: rate,
		CapturedAt:   time.Now(),
	}
	if err := s.repo.Append(reading); err != nil {
		return nil, fmt.Errorf("保存行情失败: %w", err)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(reading); err == nil {
			if err := s.rdb.Set(ctx, marketCacheKey, data, 2*s.cfg.FetchInterval).Err(); err != nil {
				s.logger.Warn("cache market reading failed", zap.Error(err))
			}
		}
	}
	return reading, nil
}

// Latest 最新行情，优先走缓存
func (s *MarketService) Latest(ctx context.Context) (*entity.MarketPriceReading, error) {
	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, marketCacheKey).Bytes(); err == nil {
			var reading entity.MarketPriceReading
			if json.Unmarshal(data, &reading) == nil {
				return &reading, nil
			}
		}
	}
	reading, err := s.repo.Latest()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reading, nil
}

// History 最近 n 条行情，按采集时间倒序
func (s *MarketService) History(n int) ([]entity.MarketPriceReading, error) {
	return s.repo.History(n)
}

// Run 后台定时抓取。启动时先抓一次，失败只记日志不中断。
func (s *MarketService) Run(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial market fetch failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.cfg.FetchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("market fetch failed", zap.Error(err))
			}
		}
	}
}

// fetchCopperCNY 解析新浪期货报价。响应形如
// var hq_str_nf_CU0="沪铜连续,145958,...,73270.000,...";
// 取引号内按逗号切分的第 9 个字段（下标 8）为最新价。
func (s *MarketService) fetchCopperCNY(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SinaQuoteURL, nil)
	if err != nil {
		return 0, err
	}
	// 新浪接口要求 Referer
	req.Header.Set("Referer", "https://finance.sina.com.cn")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("上游返回 %d", resp.StatusCode)
	}

	// 响应是 GBK 编码
	raw, err := io.ReadAll(transform.NewReader(io.LimitReader(resp.Body, 64*1024), simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return 0, err
	}

	return ParseSinaQuote(string(raw))
}

// ParseSinaQuote 从新浪报价响应中取最新价
func ParseSinaQuote(body string) (float64, error) {
	parts := strings.Split(body, `"`)
	if len(parts) < 2 {
		return 0, fmt.Errorf("报价响应格式异常")
	}
	fields := strings.Split(parts[1], ",")
	if len(fields) < 9 {
		return 0, fmt.Errorf("报价字段不足: %d", len(fields))
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(fields[8]), 64)
	if err != nil {
		return 0, fmt.Errorf("解析报价失败: %w", err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("报价非正数: %v", price)
	}
	return price, nil
}

// fetchUSDRate 获取 USD→CNY 汇率，响应为 {"rates":{"CNY":7.24,...}}
func (s *MarketService) fetchUSDRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ExchangeRateURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("上游返回 %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return 0, fmt.Errorf("解析汇率失败: %w", err)
	}
	rate, ok := payload.Rates["CNY"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("汇率数据缺少 CNY")
	}
	return rate, nil
}
