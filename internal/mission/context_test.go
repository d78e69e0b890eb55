package mission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Empty(t *testing.T) {
	ctx := NewContext()

	assert.Nil(t, ctx.GetDocument())
	assert.Equal(t, "No mission loaded", ctx.MissionName())
	assert.Equal(t, "", ctx.GetPath())
}

func TestContext_SetDocument(t *testing.T) {
	ctx := NewContext()
	doc := NewDocument(0)
	doc.Info.Name = "Bank Job"

	ctx.SetDocument(doc, "bank_job")

	assert.Same(t, doc, ctx.GetDocument())
	assert.Equal(t, "Bank Job", ctx.MissionName())
	assert.Equal(t, "bank_job", ctx.GetPath())

	ctx.SetPath("bank_job_v2")
	assert.Equal(t, "bank_job_v2", ctx.GetPath())
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx.SetDocument(NewDocument(0), "x")
		}()
		go func() {
			defer wg.Done()
			_ = ctx.MissionName()
		}()
	}
	wg.Wait()
	assert.NotNil(t, ctx.GetDocument())
}
