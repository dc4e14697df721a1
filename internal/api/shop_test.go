package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"shop_system/internal/apperr"
	"shop_system/internal/authclient"
	"shop_system/internal/domain"
	"shop_system/internal/store"
	"shop_system/internal/testutil"
	"shop_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth answers verification from a token -> identity table.
type fakeAuth struct {
	identities map[string]*authclient.Identity
	err        error
	calls      int
}

func (f *fakeAuth) Verify(_ context.Context, authorization string) (*authclient.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	id, ok := f.identities[authorization]
	if !ok {
		return nil, &authclient.UpstreamError{
			Status:      http.StatusUnauthorized,
			ContentType: "application/json",
			Body:        []byte(`{"error":"Invalid or expired token"}`),
		}
	}
	return id, nil
}

func (f *fakeAuth) Fetch(ctx context.Context, authorization string) (string, []byte, error) {
	id, err := f.Verify(ctx, authorization)
	if err != nil {
		return "", nil, err
	}
	return "application/json", fmt.Appendf(nil, `{"id":%d,"user_type":%q}`, id.ID, id.UserType), nil
}

const (
	superToken  = "Bearer super"
	keeperToken = "Bearer keeper"
	otherToken  = "Bearer other"
	custToken   = "Bearer customer"
)

func newFakeAuth() *fakeAuth {
	return &fakeAuth{identities: map[string]*authclient.Identity{
		superToken:  {ID: 1, Username: "root", UserType: domain.UserTypeSuper},
		keeperToken: {ID: 2, Username: "keeper", UserType: domain.UserTypeShopkeeper},
		otherToken:  {ID: 3, Username: "other", UserType: domain.UserTypeShopkeeper},
		custToken:   {ID: 4, Username: "cust", UserType: domain.UserTypeCustomer},
	}}
}

func newShopTestRouter(t *testing.T, name string, auth AuthService, rdb *redis.Client) (*gin.Engine, *store.ShopStore) {
	t.Helper()
	shops := store.NewShopStore(testutil.OpenShopDB(t, name))
	r := NewShopRouter(ShopDeps{
		Shops:           shops,
		Auth:            auth,
		Redis:           rdb,
		AuthServiceHost: "auth:5000",
	})
	return r, shops
}

func createShop(t *testing.T, h http.Handler, name string, keeper uint) ShopResponse {
	t.Helper()
	w := testutil.DoJSON(t, h, http.MethodPost, "/shop/create", gin.H{"name": name, "shopkeeper_id": keeper}, superToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testutil.Decode[ShopResponse](t, w)
}

func TestCreateShop(t *testing.T) {
	auth := newFakeAuth()
	r, _ := newShopTestRouter(t, "api_create_shop", auth, nil)

	shop := createShop(t, r, "Scoops", 2)
	assert.NotZero(t, shop.ID)
	assert.Equal(t, uint(2), shop.ShopkeeperID)
	assert.NotNil(t, shop.Items)
	assert.Empty(t, shop.Items)

	t.Run("second shop for the same shopkeeper", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "Cones", "shopkeeper_id": 2}, superToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "Cones"}, superToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Missing name or shopkeeper_id"}`, w.Body.String())
	})

	t.Run("not a superuser", func(t *testing.T) {
		for _, tok := range []string{keeperToken, custToken} {
			w := testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "Mine", "shopkeeper_id": 9}, tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"only superuser can create shop"}`, w.Body.String())
		}
	})

	t.Run("bad token relayed verbatim", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "Mine", "shopkeeper_id": 9}, "Bearer junk")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `{"error":"Invalid or expired token"}`, w.Body.String())
	})
}

func TestUpdateShop(t *testing.T) {
	r, _ := newShopTestRouter(t, "api_update_shop", newFakeAuth(), nil)
	shop := createShop(t, r, "Scoops", 2)
	createShop(t, r, "Cones", 3)

	path := fmt.Sprintf("/shop/update/%d", shop.ID)
	w := testutil.DoJSON(t, r, http.MethodPut, path, gin.H{"name": "Scoops & Co"}, superToken)
	require.Equal(t, http.StatusOK, w.Code)
	got := testutil.Decode[ShopResponse](t, w)
	assert.Equal(t, "Scoops & Co", got.Name)
	assert.Equal(t, uint(2), got.ShopkeeperID)

	w = testutil.DoJSON(t, r, http.MethodPut, path, nil, superToken)
	assert.Equal(t, http.StatusOK, w.Code, "empty body is an empty update")

	w = testutil.DoJSON(t, r, http.MethodPut, path, gin.H{"shopkeeper_id": 3}, superToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(t, r, http.MethodPut, "/shop/update/999", gin.H{"name": "x"}, superToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(t, r, http.MethodPut, path, gin.H{"name": "x"}, keeperToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"only superuser can update shop"}`, w.Body.String())
}

func TestCreateItem_Ownership(t *testing.T) {
	r, _ := newShopTestRouter(t, "api_create_item", newFakeAuth(), nil)
	shop := createShop(t, r, "Scoops", 2)
	path := fmt.Sprintf("/shop/%d/item/create", shop.ID)

	w := testutil.DoJSON(t, r, http.MethodPost, path, gin.H{"name": "Vanilla"}, keeperToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := testutil.Decode[ItemResponse](t, w)
	assert.Equal(t, domain.DefaultItemType, item.ItemType)
	assert.Equal(t, shop.ID, item.ShopID)

	w = testutil.DoJSON(t, r, http.MethodPost, path, gin.H{"name": "Mint", "item_type": "sorbet"}, superToken)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sorbet", testutil.Decode[ItemResponse](t, w).ItemType)

	w = testutil.DoJSON(t, r, http.MethodPost, path, gin.H{"name": "Stolen"}, otherToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"You are not authorized to create items for this shop"}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodPost, path, gin.H{"name": "Nope"}, custToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Only superuser or shopkeeper can create items"}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodPost, "/shop/999/item/create", gin.H{"name": "Ghost"}, keeperToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.DoJSON(t, r, http.MethodPost, "/shop/999/item/create", gin.H{"name": "Ghost"}, superToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(t, r, http.MethodPost, path, gin.H{}, keeperToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateItem_Ownership(t *testing.T) {
	r, shops := newShopTestRouter(t, "api_update_item", newFakeAuth(), nil)
	shop := createShop(t, r, "Scoops", 2)
	item, err := shops.CreateItem(t.Context(), shop.ID, "Vanilla", "")
	require.NoError(t, err)
	path := fmt.Sprintf("/shop/item/update/%d", item.ID)

	w := testutil.DoJSON(t, r, http.MethodPut, path, gin.H{"name": "Stolen"}, otherToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoJSON(t, r, http.MethodPut, path, gin.H{"name": "French Vanilla"}, keeperToken)
	require.Equal(t, http.StatusOK, w.Code)
	got := testutil.Decode[ItemResponse](t, w)
	assert.Equal(t, "French Vanilla", got.Name)
	assert.Equal(t, domain.DefaultItemType, got.ItemType)

	w = testutil.DoJSON(t, r, http.MethodPut, path, gin.H{"item_type": "gelato"}, superToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gelato", testutil.Decode[ItemResponse](t, w).ItemType)

	w = testutil.DoJSON(t, r, http.MethodPut, "/shop/item/update/999", gin.H{"name": "x"}, keeperToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.DoJSON(t, r, http.MethodPut, "/shop/item/update/abc", gin.H{"name": "x"}, superToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVariants(t *testing.T) {
	r, shops := newShopTestRouter(t, "api_variants", newFakeAuth(), nil)
	shop := createShop(t, r, "Scoops", 2)
	item, err := shops.CreateItem(t.Context(), shop.ID, "Cone", "")
	require.NoError(t, err)

	path := fmt.Sprintf("/shop/item/%d/variant/create", item.ID)
	w := testutil.DoJSON(t, r, http.MethodPost, path, gin.H{"name": "Chocolate"}, keeperToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.DefaultVariantType, testutil.Decode[VariantResponse](t, w).VariantType)

	w = testutil.DoJSON(t, r, http.MethodPost, path, gin.H{"name": "Mint"}, otherToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoJSON(t, r, http.MethodGet, fmt.Sprintf("/shop/item/%d/variants", item.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	vs := testutil.Decode[[]VariantResponse](t, w)
	require.Len(t, vs, 1)
	assert.Equal(t, "Chocolate", vs[0].Name)

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop/item/999/variants", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListShops(t *testing.T) {
	r, shops := newShopTestRouter(t, "api_list_shops", newFakeAuth(), nil)
	ice := createShop(t, r, "Ice Palace", 2)
	createShop(t, r, "Bakery", 3)
	_, err := shops.CreateItem(t.Context(), ice.ID, "Vanilla", "")
	require.NoError(t, err)

	w := testutil.DoJSON(t, r, http.MethodGet, "/shop", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.Decode[[]ShopResponse](t, w), 2)

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop?name=Palace", nil, "")
	got := testutil.Decode[[]ShopResponse](t, w)
	require.Len(t, got, 1)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, "Vanilla", got[0].Items[0].Name)

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop?shopkeeper_id=3", nil, "")
	got = testutil.Decode[[]ShopResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "Bakery", got[0].Name)

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop?shopkeeper_id=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop/items", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.Decode[[]ItemResponse](t, w), 1)
}

func TestShopLists_CacheInvalidatedOnWrite(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	auth := newFakeAuth()
	r, _ := newShopTestRouter(t, "api_shop_cache", auth, rdb)
	shop := createShop(t, r, "Scoops", 2)

	w := testutil.DoJSON(t, r, http.MethodGet, "/shop", nil, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w = testutil.DoJSON(t, r, http.MethodGet, "/shop", nil, "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	w = testutil.DoJSON(t, r, http.MethodGet, "/shop/items", nil, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.True(t, mr.Exists(utils.ItemListCacheKey))

	w = testutil.DoJSON(t, r, http.MethodPost, fmt.Sprintf("/shop/%d/item/create", shop.ID), gin.H{"name": "Vanilla"}, keeperToken)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, mr.Exists(utils.ItemListCacheKey))

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop", nil, "")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	got := testutil.Decode[[]ShopResponse](t, w)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Items, 1)

	calls := auth.calls
	testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "Other", "shopkeeper_id": 3}, superToken)
	testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "Third", "shopkeeper_id": 4}, superToken)
	assert.Equal(t, calls+2, auth.calls, "verification is never cached")
}

func TestAuthServiceDown(t *testing.T) {
	auth := &fakeAuth{err: apperr.ServiceUnavailable("Auth service unavailable", context.DeadlineExceeded)}
	r, _ := newShopTestRouter(t, "api_auth_down", auth, nil)

	w := testutil.DoJSON(t, r, http.MethodPost, "/shop/create", gin.H{"name": "S", "shopkeeper_id": 2}, superToken)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Auth service unavailable"}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop/verify", nil, superToken)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "public routes do not need the auth service")
}

func TestVerifyPassthroughAndConfigEcho(t *testing.T) {
	r, _ := newShopTestRouter(t, "api_passthrough", newFakeAuth(), nil)

	w := testutil.DoJSON(t, r, http.MethodGet, "/shop/verify", nil, superToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"user_type":"SUPER"}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop/verify", nil, "Bearer junk")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `{"error":"Invalid or expired token"}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodGet, "/shop/test", nil, "")
	assert.JSONEq(t, `{"AUTH_SERVICE_HOST":"auth:5000"}`, w.Body.String())
}
