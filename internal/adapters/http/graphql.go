package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/fairwage/fairwage/internal/core/domain"
	"github.com/fairwage/fairwage/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	organizationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Organization",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"slug":     &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"website":  &graphql.Field{Type: graphql.String},
			"industry": &graphql.Field{Type: graphql.String},
			"verified": &graphql.Field{Type: graphql.Boolean},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"organization_id":   &graphql.Field{Type: graphql.String},
			"name":              &graphql.Field{Type: graphql.String},
			"city":              &graphql.Field{Type: graphql.String},
			"state":             &graphql.Field{Type: graphql.String},
			"latitude":          &graphql.Field{Type: graphql.Float},
			"longitude":         &graphql.Field{Type: graphql.Float},
			"wage_report_count": &graphql.Field{Type: graphql.Int},
			"distance_meters":   &graphql.Field{Type: graphql.Float},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"source":            &graphql.Field{Type: graphql.String},
			"location_id":       &graphql.Field{Type: graphql.String},
			"name":              &graphql.Field{Type: graphql.String},
			"latitude":          &graphql.Field{Type: graphql.Float},
			"longitude":         &graphql.Field{Type: graphql.Float},
			"formatted_address": &graphql.Field{Type: graphql.String},
			"has_wage_data":     &graphql.Field{Type: graphql.Boolean},
			"wage_report_count": &graphql.Field{Type: graphql.Int},
			"distance_meters":   &graphql.Field{Type: graphql.Float},
			"relevance_score":   &graphql.Field{Type: graphql.Float},
		},
	})

	percentilesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Percentiles",
		Fields: graphql.Fields{
			"p25": &graphql.Field{Type: graphql.Int},
			"p50": &graphql.Field{Type: graphql.Int},
			"p75": &graphql.Field{Type: graphql.Int},
			"p90": &graphql.Field{Type: graphql.Int},
		},
	})

	statisticsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WageStatistics",
		Fields: graphql.Fields{
			"count":               &graphql.Field{Type: graphql.Int},
			"average_cents":       &graphql.Field{Type: graphql.Int},
			"median_cents":        &graphql.Field{Type: graphql.Int},
			"min_cents":           &graphql.Field{Type: graphql.Int},
			"max_cents":           &graphql.Field{Type: graphql.Int},
			"std_deviation_cents": &graphql.Field{Type: graphql.Float},
			"percentiles":         &graphql.Field{Type: percentilesType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"organizations": &graphql.Field{
				Type:        graphql.NewList(organizationType),
				Description: "List all organizations",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Organizations.List(p.Context)
				},
			},
			"organization": &graphql.Field{
				Type:        organizationType,
				Description: "Get an organization by slug",
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Organizations.GetBySlug(p.Context, p.Args["slug"].(string))
				},
			},
			"searchLocations": &graphql.Field{
				Type:        graphql.NewList(searchResultType),
				Description: "Unified location search across the catalog and OpenStreetMap",
				Args: graphql.FieldConfigArgument{
					"query":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km":   &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"include_osm": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
					"limit":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Search.Search(p.Context, usecases.SearchParams{
						Query:      p.Args["query"].(string),
						Lat:        p.Args["lat"].(float64),
						Lon:        p.Args["lon"].(float64),
						RadiusKm:   p.Args["radius_km"].(float64),
						IncludeOSM: p.Args["include_osm"].(bool),
						Limit:      p.Args["limit"].(int),
					})
				},
			},
			"nearbyLocations": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "Find catalog locations near a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.FindNearby(p.Context,
						p.Args["lat"].(float64), p.Args["lon"].(float64),
						p.Args["radius"].(float64), p.Args["limit"].(int))
				},
			},
			"location": &graphql.Field{
				Type:        locationType,
				Description: "Get a location by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"statistics": &graphql.Field{
				Type:        statisticsType,
				Description: "Wage statistics for a scope (global, location, organization)",
				Args: graphql.FieldConfigArgument{
					"scope":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "global"},
					"scope_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					scope := domain.StatsScope(p.Args["scope"].(string))
					return deps.Stats.Compute(p.Context, scope, p.Args["scope_id"].(string), domain.StatsFilters{})
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
