package server

import (
	"net/http"
	"strings"

	"recipe-planner/internal/app"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/profile"
	"recipe-planner/internal/recipe"

	"github.com/go-chi/chi/v5"
)

type mealRequest struct {
	RecipeID       string `json:"recipe_id"`
	CustomMealName string `json:"custom_meal_name"`
	PlannedDate    string `json:"planned_date"`
	MealType       string `json:"meal_type"`
}

type copyWeekRequest struct {
	SourceWeek string `json:"source_week"`
	TargetWeek string `json:"target_week"`
}

type importRequest struct {
	URL string `json:"url"`
}

type pantryRequest struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"stats": stats})
}

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.GetWeek(r.Context(), r.URL.Query().Get("start"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{
		"week_start": view.WeekStart,
		"prev_week":  view.PrevWeek,
		"next_week":  view.NextWeek,
		"days":       view.Days,
		"meal_types": view.MealTypes,
		"meals":      view.Meals,
		"completed":  view.Completed,
	})
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.ShoppingList(r.Context(), r.URL.Query().Get("start"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"shopping_list": list})
}

func (s *Server) handleListMealPlans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	meals, err := s.app.GetMealPlans(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"meals": meals})
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	var err error
	var meal *planner.Meal
	if strings.TrimSpace(req.CustomMealName) != "" {
		meal, err = s.app.AddCustomMeal(ctx, req.CustomMealName, req.PlannedDate, req.MealType)
	} else {
		meal, err = s.app.AddMeal(ctx, req.RecipeID, req.PlannedDate, req.MealType)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"meal": meal})
}

func (s *Server) handleCopyWeek(w http.ResponseWriter, r *http.Request) {
	var req copyWeekRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.app.CopyWeek(r.Context(), req.SourceWeek, req.TargetWeek)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"copied": n})
}

func (s *Server) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemoveMeal(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleToggleMeal(w http.ResponseWriter, r *http.Request) {
	done, err := s.app.ToggleMealComplete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"is_completed": done})
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.app.ListRecipes(r.Context(), recipe.Query{
		Search:        q.Get("search"),
		Cuisine:       q.Get("cuisine"),
		FavoritesOnly: q.Get("favorites") == "true",
		Sort:          recipe.ParseSortKey(q.Get("sort")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{
		"recipes":        list.Recipes,
		"total_count":    list.TotalCount,
		"filtered_count": list.FilteredCount,
		"cuisines":       list.Cuisines,
	})
}

func (s *Server) handleGenerateRecipe(w http.ResponseWriter, r *http.Request) {
	var in app.GenerateInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.app.GenerateRecipe(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, result{"recipe": rec})
}

func (s *Server) handleImportRecipe(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.app.ImportRecipe(r.Context(), req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, result{"recipe": rec})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.app.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"recipe": rec})
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteRecipe(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := s.app.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"is_favorite": fav})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"profile": p})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var u profile.Update
	if err := decode(w, r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.app.UpdateProfile(r.Context(), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"profile": p})
}

func (s *Server) handleListPantry(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.ListPantry(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"items": items})
}

func (s *Server) handleAddPantryItem(w http.ResponseWriter, r *http.Request) {
	var req pantryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.app.AddPantryItem(r.Context(), req.Name, req.Quantity, req.ExpiryDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result{"item": item})
}

func (s *Server) handleRemovePantryItem(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemovePantryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}
