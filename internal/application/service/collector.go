package service

import "schedule-agent/internal/domain/entity"

// ResultCollector accumulates the result sets produced by execute_sql
// steps so the final game summary can be built after the loop ends.
type ResultCollector struct {
	sets []*entity.ResultSet
}

func NewResultCollector() *ResultCollector {
	return &ResultCollector{}
}

func (c *ResultCollector) Add(set *entity.ResultSet) {
	if set == nil {
		return
	}
	c.sets = append(c.sets, set)
}

func (c *ResultCollector) All() []*entity.ResultSet {
	return c.sets
}

func (c *ResultCollector) HasResults() bool {
	return len(c.sets) > 0
}
