package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/feature/symbols/validation"
)

// RulesHandler は検証ルールセットの実運用チューニングAPIを処理します。
// 再デプロイなしでルールの確認・削除・株式ルールの切り替えができます。
type RulesHandler struct {
	engine *validation.Engine
}

// NewRulesHandler は新しい RulesHandler を作成します。
func NewRulesHandler(engine *validation.Engine) *RulesHandler {
	return &RulesHandler{engine: engine}
}

// List は現在のルールを評価順で返します。
func (h *RulesHandler) List(c *gin.Context) {
	rules := h.engine.Rules()
	out := make([]gin.H, 0, len(rules))
	for _, r := range rules {
		out = append(out, gin.H{"name": r.Name, "severity": r.Severity})
	}
	c.JSON(http.StatusOK, gin.H{"rules": out, "count": len(out)})
}

// Remove は名前指定でルールを削除します。存在しない場合は404を返します。
func (h *RulesHandler) Remove(c *gin.Context) {
	name := c.Param("name")
	if !h.engine.RemoveRule(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rule named " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": name})
}

// equityModeRequest toggles between the two equity companyName variants found
// in our feeds. Which one is correct is still pending product sign-off.
type equityModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=strict permissive"`
}

// SetEquityMode は株式のcompanyName必須ルールをstrict/permissiveで
// 切り替えます。
func (h *RulesHandler) SetEquityMode(c *gin.Context) {
	var req equityModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Mode == "permissive" {
		h.engine.AddRule(validation.PermissiveEquityCompanyNameRule())
	} else {
		h.engine.AddRule(validation.StrictEquityCompanyNameRule())
	}
	c.JSON(http.StatusOK, gin.H{"equity_company_name_mode": req.Mode})
}
