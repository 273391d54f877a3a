package middleware

import (
	"testing"

	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestLoggerSetsRqID(t *testing.T) {
	c := tele.NewContext(nil, tele.Update{Message: &tele.Message{Text: "ABC", Chat: &tele.Chat{ID: 42}}})

	var rqID string
	handler := Logger()(func(c tele.Context) error {
		rqID = utils.GetRequestIDFromCtx(utils.CreateCtxWithRqID(c))
		return nil
	})

	require.NoError(t, handler(c))
	assert.NotEmpty(t, rqID)
	assert.Equal(t, rqID, c.Get("rqID"))
}
