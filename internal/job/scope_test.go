package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScopeSummary(t *testing.T) {
	lines := ParseScopeSummary("2x Smoke Detector\nPull Station\n\n10x Horn Strobe  ")
	require.Len(t, lines, 3)

	assert.Equal(t, ScopeLine{Description: "Smoke Detector", Quantity: 2}, lines[0])
	assert.Equal(t, ScopeLine{Description: "Pull Station", Quantity: 1}, lines[1])
	assert.Equal(t, ScopeLine{Description: "Horn Strobe", Quantity: 10}, lines[2])
}

func TestParseScopeSummaryNoPrefix(t *testing.T) {
	lines := ParseScopeSummary("Replace control panel")
	require.Len(t, lines, 1)
	assert.Equal(t, "Replace control panel", lines[0].Description)
	assert.Equal(t, 1.0, lines[0].Quantity)
}

func TestParseScopeSummaryEmpty(t *testing.T) {
	assert.Empty(t, ParseScopeSummary(""))
	assert.Empty(t, ParseScopeSummary("\n  \n"))
}

func TestDistributeTotalProportionalToQuantity(t *testing.T) {
	lines := ParseScopeSummary("2x Smoke Detector\nPull Station")
	priced := DistributeTotal(lines, 300)
	require.Len(t, priced, 2)

	// 300 over three units prices every unit at 100.
	assert.Equal(t, 100.0, priced[0].UnitPrice)
	assert.Equal(t, 200.0, priced[0].Total)
	assert.Equal(t, 100.0, priced[1].UnitPrice)
	assert.Equal(t, 100.0, priced[1].Total)
}

func TestDistributeTotalEvenSplit(t *testing.T) {
	lines := ParseScopeSummary("Inspect first floor\nInspect second floor\nInspect basement")
	priced := DistributeTotal(lines, 300)
	require.Len(t, priced, 3)
	for _, p := range priced {
		assert.Equal(t, 100.0, p.UnitPrice)
		assert.Equal(t, 100.0, p.Total)
	}
}

func TestDistributeTotalRoundsPerLine(t *testing.T) {
	lines := ParseScopeSummary("Line one\nLine two\nLine three")
	priced := DistributeTotal(lines, 100)
	require.Len(t, priced, 3)
	for _, p := range priced {
		assert.Equal(t, 33.33, p.UnitPrice)
	}
}

func TestDistributeTotalEmpty(t *testing.T) {
	assert.Nil(t, DistributeTotal(nil, 500))
}
