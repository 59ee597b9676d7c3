package projection

import "github.com/yonasstephen/shams-sub000/internal/models"

// scheduleCache memoizes game-date lookups for the lifetime of one request.
type scheduleCache struct {
	source     StatsSource
	start, end models.Date
	byPlayer   map[int]models.DateSet
}

func newScheduleCache(source StatsSource, start, end models.Date) *scheduleCache {
	return &scheduleCache{source: source, start: start, end: end, byPlayer: make(map[int]models.DateSet)}
}

func (c *scheduleCache) gameDates(playerID int) models.DateSet {
	if dates, ok := c.byPlayer[playerID]; ok {
		return dates
	}
	dates := c.source.GameDates(playerID, c.start, c.end)
	if dates == nil {
		dates = make(models.DateSet)
	}
	c.byPlayer[playerID] = dates
	return dates
}
