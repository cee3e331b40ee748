package vars

const (
	// 模型名称
	NOMIC              = "nomic-embed-text"
	QWEN7B             = "qwen2.5:7b"
	OpenAIDefaultModel = "gpt-4o-mini"

	// Elasticsearch index for lots
	LotIndex = "procurement_lots_v1"

	// AppName is used in the mail footer and HTTP user agent.
	AppName = "Закупки РМКСИБ"
)

// 提示词
var (
	CLASSIFY_SYSTEM = `Ты эксперт по классификации товаров и номенклатуре в промышленных закупках.
Твоя задача - определить, относится ли товар/услуга из лота к указанным номенклатурным группам.

Отвечай ТОЛЬКО "ДА" или "НЕТ" без дополнительных пояснений.`

	CLASSIFY_USER = `Определи, относится ли товар/услуга из следующего лота к одной из указанных номенклатурных групп:

<ДАННЫЕ ЛОТА>
{{.Lot}}
</ДАННЫЕ ЛОТА>

<НОМЕНКЛАТУРНЫЕ ГРУППЫ ИЗ НАСТРОЕК>
{{.Groups}}
</НОМЕНКЛАТУРНЫЕ ГРУППЫ ИЗ НАСТРОЕК>

Учитывай, что названия могут отличаться, но товар может относиться к той же категории.
Например: "болты М12" относятся к "Метизы и крепёжные изделия", даже если в названии нет слова "метиз".

Ответь ТОЛЬКО "ДА" если товар относится хотя бы к одной группе, или "НЕТ" если не относится ни к одной.`

	RELIABILITY = `Проанализируй надежность поставщика и предоставь оценку в следующем формате:

Поставщик: {{.Supplier}}
{{.TaxID}}

Проверь в открытых источниках:
1. Есть ли информация о неблагонадежности поставщика (судебные дела, задолженности, банкротство)
2. Репутация компании на рынке
3. Опыт работы в отрасли
4. Финансовое состояние (если доступна информация)

Ответ предоставь в формате:
РЕЙТИНГ: [число от 0 до 100, где 100 - максимально надежный]
ИНФОРМАЦИЯ: [краткое описание найденной информации о надежности, 2-3 предложения]

Если информации недостаточно, укажи это в разделе ИНФОРМАЦИЯ.`

	EXTRACT_LOT = `Ты помощник отдела закупок. Из текста письма извлеки сведения о закупочном лоте.
Текущая дата: {{.CurrentDate}} (для расчёта относительных сроков).

Верни JSON со следующими полями:
1. **lot_number**: номер лота или закупки как в письме. Если номера нет, пустая строка.
2. **title**: краткое наименование предмета закупки.
3. **description**: описание (до 500 символов).
4. **budget**: начальная цена в рублях, только число. "млн" и "тыс." пересчитай в рубли. Если не указано, 0.
5. **deadline**: срок подачи предложений в формате YYYY-MM-DD.
6. **customer**: наименование заказчика.
7. **url**: ссылка на лот, если есть.

Текст письма:
{{.Content}}

Output JSON only:
`

	ANALYZE_QUERY = `
Ты помощник по поиску закупочных лотов. Текущая дата: {{.CurrentDate}}.
Проанализируй запрос пользователя и извлеки условия фильтрации в формате JSON.

Правила:
1. **filters** (объект, не массив):
   - "customers": массив наименований заказчиков, если они названы
   - "review_status": одно из "not_viewed", "in_work", "rejected", если пользователь спрашивает о статусе просмотра
   - "date_range": срок подачи {"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"}, только известные поля
   - "amount_range": бюджет {"min": число, "max": число} в рублях
   - если условий нет, верни пустой объект {}
2. **keywords**: массив ключевых слов предмета закупки для полнотекстового поиска.

Output JSON format example:
{
  "filters": {"customers": ["Полюс"], "amount_range": {"min": 1000000}},
  "keywords": ["кабель", "провод"]
}

Output JSON only. No markdown.
`
)
