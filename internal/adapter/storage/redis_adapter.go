package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

const (
	inventoryKeyPrefix = "inventory:"
	inventorySeqKey    = "inventory:seq"
)

// saveInventoryScript inserts (id == 0) or updates a record hash only when
// the stored id and version match. Returns {id, version}, or {0} on conflict.
var saveInventoryScript = redis.NewScript(`
local key = KEYS[1]
local id = tonumber(ARGV[1])
local version = tonumber(ARGV[2])
local quantity = ARGV[3]
local product_id = ARGV[4]
local now = ARGV[5]

local exists = redis.call('EXISTS', key)

if id == 0 then
	if exists == 1 then
		return {0}
	end
	local new_id = redis.call('INCR', KEYS[2])
	redis.call('HSET', key,
		'id', new_id, 'product_id', product_id, 'quantity', quantity,
		'version', 1, 'created_at', now, 'updated_at', now)
	return {new_id, 1}
end

if exists == 0 then
	return {0}
end

local current = redis.call('HMGET', key, 'id', 'version')
if tonumber(current[1]) ~= id or tonumber(current[2]) ~= version then
	return {0}
end

redis.call('HSET', key, 'quantity', quantity, 'version', version + 1, 'updated_at', now)
return {id, version + 1}
`)

type RedisAdapter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func inventoryKey(productID int64) string {
	return inventoryKeyPrefix + strconv.FormatInt(productID, 10)
}

func (r *RedisAdapter) FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	fields, err := r.client.HGetAll(ctx, inventoryKey(productID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	inv, err := decodeInventory(fields)
	if err != nil {
		return nil, fmt.Errorf("decode inventory %d: %w", productID, err)
	}
	return inv, nil
}

func (r *RedisAdapter) Save(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	now := r.now()
	keys := []string{inventoryKey(inv.ProductID), inventorySeqKey}

	result, err := saveInventoryScript.Run(ctx, r.client, keys,
		inv.ID, inv.Version, inv.Quantity, inv.ProductID, now.Format(time.RFC3339Nano),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("save inventory: %w", err)
	}
	if len(result) != 2 || result[0] == 0 {
		return nil, ErrOptimisticLock
	}

	if inv.ID == 0 {
		inv.CreatedAt = now
	}
	inv.ID = result[0]
	inv.Version = int(result[1])
	inv.UpdatedAt = now
	inv.Product = nil
	return &inv, nil
}

func decodeInventory(fields map[string]string) (*domain.Inventory, error) {
	var inv domain.Inventory
	var err error

	if inv.ID, err = strconv.ParseInt(fields["id"], 10, 64); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if inv.ProductID, err = strconv.ParseInt(fields["product_id"], 10, 64); err != nil {
		return nil, fmt.Errorf("product_id: %w", err)
	}
	if inv.Quantity, err = strconv.Atoi(fields["quantity"]); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if inv.Version, err = strconv.Atoi(fields["version"]); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if inv.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if inv.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &inv, nil
}
