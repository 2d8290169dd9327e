package importer

import (
	"testing"
)

func TestExtractGenericHeuristicItemprop(t *testing.T) {
	page := `<html><body>
	<h1 itemprop="name">Pancakes</h1>
	<ul>
	  <li itemprop="recipeIngredient">2 eggs</li>
	  <li itemprop="recipeIngredient">1 cup flour</li>
	</ul>
	<div itemprop="recipeInstructions">
	  <ol><li>Whisk everything</li><li>Fry in butter</li></ol>
	</div>
	<span itemprop="recipeYield">serves 2</span>
	</body></html>`

	got := extractGenericHeuristic("https://example.com/pancakes", docFromHTML(t, page))
	if got == nil {
		t.Fatal("extractGenericHeuristic returned nil")
	}
	if name := asString(got.Name); name != "Pancakes" {
		t.Errorf("Name = %q", name)
	}
	ingredients := asStringList(got.Ingredients)
	if len(ingredients) != 2 {
		t.Errorf("Ingredients = %v", ingredients)
	}
	steps := asStringList(got.RecipeInstructions)
	if len(steps) != 2 || steps[0] != "Whisk everything" {
		t.Errorf("Instructions = %v", steps)
	}
	if yield := asString(got.RecipeYield); yield != "serves 2" {
		t.Errorf("RecipeYield = %q", yield)
	}
}

func TestExtractGenericHeuristicClassNames(t *testing.T) {
	page := `<html><body>
	<h1 class="entry-title">Sopa de legumes</h1>
	<div class="ingredientes"><ul><li>2 cenouras</li><li>1 batata</li></ul></div>
	<div class="preparacao"><ol><li>Cozer tudo</li></ol></div>
	</body></html>`

	got := extractGenericHeuristic("https://example.com/sopa", docFromHTML(t, page))
	if got == nil {
		t.Fatal("extractGenericHeuristic returned nil")
	}
	if ingredients := asStringList(got.Ingredients); len(ingredients) != 2 {
		t.Errorf("Ingredients = %v", ingredients)
	}
	if steps := asStringList(got.RecipeInstructions); len(steps) != 1 {
		t.Errorf("Instructions = %v", steps)
	}
}

func TestExtractGenericHeuristicLooseFallback(t *testing.T) {
	// 沒有任何已知選擇器，只有 class 帶 "ingred" 痕跡的 li
	page := `<html><body>
	<h1>Mystery dish</h1>
	<ul><li class="rcp-ingred-line">1 onion</li><li class="rcp-ingred-line">2 cloves garlic</li></ul>
	</body></html>`

	got := extractGenericHeuristic("https://example.com/mystery", docFromHTML(t, page))
	if got == nil {
		t.Fatal("extractGenericHeuristic returned nil")
	}
	ingredients := asStringList(got.Ingredients)
	if len(ingredients) != 2 || ingredients[0] != "1 onion" {
		t.Errorf("Ingredients = %v", ingredients)
	}
}

func TestExtractGenericHeuristicNothingFound(t *testing.T) {
	page := `<html><body><h1>About us</h1><p>We sell hardware.</p></body></html>`
	if got := extractGenericHeuristic("https://example.com/about", docFromHTML(t, page)); got != nil {
		t.Errorf("extractGenericHeuristic = %+v, want nil", got)
	}
}
