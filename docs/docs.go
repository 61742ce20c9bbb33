// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "CronSecret": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Вход", "responses": {"200": {"description": "JWT"}, "401": {"description": "Неверный email или пароль"}, "429": {"description": "Слишком много попыток"}}}},
        "/categories": {
            "get": {"tags": ["categories"], "summary": "Список категорий", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["categories"], "summary": "Создать категорию", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Название уже занято"}}}
        },
        "/categories/{categoryID}": {
            "get": {"tags": ["categories"], "summary": "Категория", "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Не найдена"}}},
            "put": {"tags": ["categories"], "summary": "Обновить категорию", "security": [{"BearerAuth": []}], "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["categories"], "summary": "Удалить категорию", "security": [{"BearerAuth": []}], "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Категория используется"}}}
        },
        "/categories/{categoryID}/players": {"get": {"tags": ["categories"], "summary": "Игроки категории", "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/categories/{categoryID}/rounds": {"get": {"tags": ["rounds"], "summary": "Раунды категории", "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/categories/{categoryID}/fixture": {
            "get": {"tags": ["fixture"], "summary": "Календарь категории", "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["fixture"], "summary": "Сгенерировать календарь", "security": [{"BearerAuth": []}], "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Календарь уже существует"}}},
            "delete": {"tags": ["fixture"], "summary": "Удалить календарь", "security": [{"BearerAuth": []}], "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Есть результаты"}}}
        },
        "/categories/{categoryID}/standings": {"get": {"tags": ["fixture"], "summary": "Таблица категории", "parameters": [{"name": "categoryID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/players": {"post": {"tags": ["players"], "summary": "Зарегистрировать игрока", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Email уже используется"}}}},
        "/players/{playerID}/credentials": {"post": {"tags": ["players"], "summary": "Создать учётную запись игрока", "security": [{"BearerAuth": []}], "parameters": [{"name": "playerID", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}}}},
        "/rounds/{roundID}/close": {"post": {"tags": ["rounds"], "summary": "Закрыть раунд", "security": [{"BearerAuth": []}], "parameters": [{"name": "roundID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Есть матчи без результата"}}}},
        "/matches/{matchID}/result": {"put": {"tags": ["matches"], "summary": "Результат матча (админ)", "security": [{"BearerAuth": []}], "parameters": [{"name": "matchID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "422": {"description": "Неверный счёт"}}}},
        "/me/matches": {"get": {"tags": ["me"], "summary": "Матчи текущего игрока", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/matches/{matchID}/result": {"post": {"tags": ["me"], "summary": "Загрузить результат своего матча", "security": [{"BearerAuth": []}], "parameters": [{"name": "matchID", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Не участник"}, "409": {"description": "Раунд не активен"}}}},
        "/cron/close-rounds": {"post": {"tags": ["cron"], "summary": "Истечение раундов по дате", "security": [{"CronSecret": []}], "responses": {"200": {"description": "Отчёт"}, "401": {"description": "Неверный секрет"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "League System API",
	Description:      "Круговые турниры по категориям: календарь, результаты, таблица.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
