package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"examprep_backend/internal/config"
)

// Neo4jClient 概念图存储客户端
type Neo4jClient struct {
	driver neo4j.DriverWithContext
	cfg    config.GraphConfig
}

func NewNeo4jClient(cfg config.GraphConfig) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	client := &Neo4jClient{driver: driver, cfg: cfg}
	if err := client.driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to Neo4j: %w", err)
	}
	return client, nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// LoadTransferEdges 读取全部 (:Concept)-[:RELATES_TO {weight}]->(:Concept) 边。
func (c *Neo4jClient) LoadTransferEdges(ctx context.Context) ([]Edge, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.cfg.Database,
	})
	defer session.Close(ctx)

	query := `
		MATCH (a:Concept)-[r:RELATES_TO]->(b:Concept)
		RETURN a.code AS from, b.code AS to, coalesce(r.weight, 0.0) AS weight
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		var edges []Edge
		for res.Next(ctx) {
			record := res.Record()
			from, _ := record.Get("from")
			to, _ := record.Get("to")
			weight, _ := record.Get("weight")

			edge := Edge{}
			if s, ok := from.(string); ok {
				edge.From = s
			}
			if s, ok := to.(string); ok {
				edge.To = s
			}
			switch w := weight.(type) {
			case float64:
				edge.Weight = w
			case int64:
				edge.Weight = float64(w)
			}
			edges = append(edges, edge)
		}
		return edges, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]Edge), nil
}

// LoadGraph 从 Neo4j 构建迁移图快照
func (c *Neo4jClient) LoadGraph(ctx context.Context) (*TransferGraph, error) {
	edges, err := c.LoadTransferEdges(ctx)
	if err != nil {
		return nil, err
	}
	return NewTransferGraph(edges)
}

// FromConfigEdges 配置回退边构图，Neo4j 关闭时使用
func FromConfigEdges(edges []config.TransferEdge) (*TransferGraph, error) {
	converted := make([]Edge, 0, len(edges))
	for _, e := range edges {
		converted = append(converted, Edge{From: e.From, To: e.To, Weight: e.Weight})
	}
	return NewTransferGraph(converted)
}
